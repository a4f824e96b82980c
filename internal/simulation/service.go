package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/everai-labs/simulation-engine/internal/models"
	"github.com/everai-labs/simulation-engine/internal/storage"
)

// Common errors
var (
	ErrSimulationNotFound = errors.New("simulation not found")
	ErrAgentNotConfigured = errors.New("simulation has no agent configured")
)

// DefaultVoiceID is used when an update supplies a prompt without a voice
const DefaultVoiceID = "11labs-Adrian"

// PromptGenerator produces a simulation prompt from a conversation transcript
type PromptGenerator interface {
	GeneratePrompt(ctx context.Context, transcript string) (string, error)
}

// AgentProvider provisions voice-agent resources. CreateAgent requires the
// reasoning-resource id returned by CreateLLM.
type AgentProvider interface {
	CreateLLM(ctx context.Context, prompt string) (string, error)
	CreateAgent(ctx context.Context, llmID, voiceID string) (string, error)
	CreateWebCall(ctx context.Context, agentID string) (string, error)
}

// PreviewAuditor records successful preview sessions. Best effort only.
type PreviewAuditor interface {
	RecordPreview(ctx context.Context, simulationID, userID, agentID string) error
}

// Service defines the simulation lifecycle operations
type Service interface {
	Create(ctx context.Context, req *models.CreateSimulationRequest) (*models.CreateSimulationResponse, error)
	Update(ctx context.Context, id string, req *models.UpdateSimulationRequest) (*models.UpdateSimulationResponse, error)
	Preview(ctx context.Context, id, userID string) (*models.PreviewResponse, error)
	Get(ctx context.Context, id string) (*models.Simulation, error)
	List(ctx context.Context, filters models.ListFilters) ([]*models.Simulation, error)
	Ping(ctx context.Context) error
}

// Orchestrator implements Service. All collaborators are injected; the
// orchestrator holds no mutable state of its own, so concurrent operations
// only share the store.
type Orchestrator struct {
	repo    storage.Repository
	prompts PromptGenerator
	agents  AgentProvider
	auditor PreviewAuditor
	now     func() time.Time
}

// NewOrchestrator creates a new simulation orchestrator. auditor may be nil
// when no preview audit trail is configured.
func NewOrchestrator(repo storage.Repository, prompts PromptGenerator, agents AgentProvider, auditor PreviewAuditor) *Orchestrator {
	return &Orchestrator{
		repo:    repo,
		prompts: prompts,
		agents:  agents,
		auditor: auditor,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Transcript renders a script as a newline-joined "role: sentence"
// conversation, in authored order
func Transcript(script []models.ScriptLine) string {
	lines := make([]string, 0, len(script))
	for _, line := range script {
		lines = append(lines, fmt.Sprintf("%s: %s", line.Role, line.ScriptSentence))
	}
	return strings.Join(lines, "\n")
}

// Create generates a prompt from the script and stores the new simulation.
// Nothing is inserted when prompt generation fails.
func (o *Orchestrator) Create(ctx context.Context, req *models.CreateSimulationRequest) (*models.CreateSimulationResponse, error) {
	prompt, err := o.prompts.GeneratePrompt(ctx, Transcript(req.Script))
	if err != nil {
		return nil, fmt.Errorf("failed to generate simulation prompt: %w", err)
	}

	now := o.now()
	sim := &models.Simulation{
		Name:           req.Name,
		DivisionID:     req.DivisionID,
		DepartmentID:   req.DepartmentID,
		Type:           req.Type,
		Script:         req.Script,
		Tags:           req.Tags,
		Status:         models.StatusDraft,
		Version:        1,
		Prompt:         prompt,
		CreatedBy:      req.UserID,
		CreatedOn:      now,
		LastModifiedBy: req.UserID,
		LastModified:   now,
	}

	id, err := o.repo.InsertSimulation(ctx, sim)
	if err != nil {
		return nil, fmt.Errorf("failed to store simulation: %w", err)
	}

	slog.Info("simulation created",
		"id", id,
		"division", req.DivisionID,
		"user", req.UserID,
		"script_lines", len(req.Script),
	)

	return &models.CreateSimulationResponse{
		ID:     id,
		Status: "success",
		Prompt: prompt,
	}, nil
}

// Update applies a sparse field set to an existing simulation. When a new
// prompt is supplied, a reasoning resource and an agent are provisioned in
// that order and staged into the update as a pair; the store write happens
// only after all provisioning succeeded.
func (o *Orchestrator) Update(ctx context.Context, id string, req *models.UpdateSimulationRequest) (*models.UpdateSimulationResponse, error) {
	sim, err := o.repo.GetSimulation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get simulation: %w", err)
	}
	if sim == nil {
		return nil, ErrSimulationNotFound
	}

	set := buildUpdateSet(req)

	if req.Prompt != nil {
		llmID, agentID, err := o.provisionAgent(ctx, *req.Prompt, req.VoiceID)
		if err != nil {
			return nil, err
		}
		set["llmId"] = llmID
		set["agentId"] = agentID
	}

	set["lastModified"] = o.now()
	set["lastModifiedBy"] = req.UserID

	modified, err := o.repo.UpdateSimulationFields(ctx, id, set)
	if err != nil {
		return nil, fmt.Errorf("failed to update simulation: %w", err)
	}
	if modified == 0 {
		return nil, fmt.Errorf("update of simulation %s modified no records", id)
	}

	slog.Info("simulation updated",
		"id", id,
		"user", req.UserID,
		"fields", len(set),
		"provisioned", req.Prompt != nil,
	)

	return &models.UpdateSimulationResponse{
		ID:     id,
		Status: "success",
	}, nil
}

// provisionAgent creates a reasoning resource from the prompt, then an agent
// bound to it. Strictly sequential: the agent step needs the llm id.
func (o *Orchestrator) provisionAgent(ctx context.Context, prompt string, voiceID *string) (string, string, error) {
	llmID, err := o.agents.CreateLLM(ctx, prompt)
	if err != nil {
		return "", "", fmt.Errorf("failed to create reasoning resource: %w", err)
	}

	voice := DefaultVoiceID
	if voiceID != nil && *voiceID != "" {
		voice = *voiceID
	}

	agentID, err := o.agents.CreateAgent(ctx, llmID, voice)
	if err != nil {
		return "", "", fmt.Errorf("failed to create agent: %w", err)
	}

	return llmID, agentID, nil
}

// buildUpdateSet maps the request's optional fields onto stored document
// keys. Scalars go through the field-mapping table; the script and each
// configuration sub-block replace their stored value wholesale.
func buildUpdateSet(req *models.UpdateSimulationRequest) map[string]interface{} {
	set := make(map[string]interface{})

	for field, value := range req.ScalarFields() {
		set[models.FieldMappings[field]] = value
	}

	if req.Script != nil {
		set["script"] = req.Script
	}

	if req.Lvl1 != nil {
		set["lvl1"] = models.LevelSettings{
			IsEnabled:                  req.Lvl1.IsEnabled,
			EnablePractice:             req.Lvl1.EnablePractice,
			HideAgentScript:            req.Lvl1.HideAgentScript,
			HideCustomerScript:         req.Lvl1.HideCustomerScript,
			HideKeywordScores:          req.Lvl1.HideKeywordScores,
			HideSentimentScores:        req.Lvl1.HideSentimentScores,
			HideHighlights:             req.Lvl1.HideHighlights,
			HideCoachingTips:           req.Lvl1.HideCoachingTips,
			EnablePostSimulationSurvey: req.Lvl1.EnablePostSimulationSurvey,
			AIPoweredPausesAndFeedback: req.Lvl1.AIPoweredPausesAndFeedback,
		}
	}

	if req.Lvl2 != nil {
		set["lvl2"] = models.LevelToggle{IsEnabled: req.Lvl2.IsEnabled}
	}

	if req.Lvl3 != nil {
		set["lvl3"] = models.LevelToggle{IsEnabled: req.Lvl3.IsEnabled}
	}

	if req.SimulationScoringMetrics != nil {
		set["simulationScoringMetrics"] = models.ScoringMetrics{
			IsEnabled:    req.SimulationScoringMetrics.IsEnabled,
			KeywordScore: req.SimulationScoringMetrics.KeywordScore,
			ClickScore:   req.SimulationScoringMetrics.ClickScore,
		}
	}

	if req.SimPractice != nil {
		set["simPractice"] = models.PracticeSettings{
			IsUnlimited:       req.SimPractice.IsUnlimited,
			PreRequisiteLimit: req.SimPractice.PreRequisiteLimit,
		}
	}

	return set
}

// Preview looks up the simulation's provisioned agent and requests an
// ephemeral web-call session for it
func (o *Orchestrator) Preview(ctx context.Context, id, userID string) (*models.PreviewResponse, error) {
	sim, err := o.repo.GetSimulation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get simulation: %w", err)
	}
	if sim == nil {
		return nil, ErrSimulationNotFound
	}

	if !sim.HasAgent() {
		return nil, ErrAgentNotConfigured
	}

	token, err := o.agents.CreateWebCall(ctx, sim.AgentID)
	if err != nil {
		return nil, fmt.Errorf("failed to create web call: %w", err)
	}

	if o.auditor != nil {
		if err := o.auditor.RecordPreview(ctx, id, userID, sim.AgentID); err != nil {
			slog.Warn("failed to record preview", "error", err, "id", id)
		}
	}

	slog.Info("preview started", "id", id, "user", userID, "agent", sim.AgentID)

	return &models.PreviewResponse{AccessToken: token}, nil
}

// Get retrieves a simulation by id
func (o *Orchestrator) Get(ctx context.Context, id string) (*models.Simulation, error) {
	sim, err := o.repo.GetSimulation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get simulation: %w", err)
	}
	if sim == nil {
		return nil, ErrSimulationNotFound
	}

	return sim, nil
}

// List returns simulations matching filters
func (o *Orchestrator) List(ctx context.Context, filters models.ListFilters) ([]*models.Simulation, error) {
	sims, err := o.repo.ListSimulations(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list simulations: %w", err)
	}

	return sims, nil
}

// Ping checks that the store is reachable
func (o *Orchestrator) Ping(ctx context.Context) error {
	return o.repo.Ping(ctx)
}
