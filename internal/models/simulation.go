package models

import (
	"time"
)

// SimulationStatus represents the lifecycle state of a simulation
type SimulationStatus string

const (
	StatusDraft     SimulationStatus = "draft"
	StatusPublished SimulationStatus = "published"
	StatusArchived  SimulationStatus = "archived"
)

// IsValid returns true if the status is one of the known states
func (s SimulationStatus) IsValid() bool {
	return s == StatusDraft || s == StatusPublished || s == StatusArchived
}

// ScriptLine is a single authored line of a simulation script
type ScriptLine struct {
	Role           string   `json:"role"`
	ScriptSentence string   `json:"script_sentence"`
	Keywords       []string `json:"keywords,omitempty"`
}

// LevelSettings holds the lvl1 training-mode configuration.
// Replaced wholesale on update, never merged field-by-field.
type LevelSettings struct {
	IsEnabled                  bool `json:"isEnabled"`
	EnablePractice             bool `json:"enablePractice"`
	HideAgentScript            bool `json:"hideAgentScript"`
	HideCustomerScript         bool `json:"hideCustomerScript"`
	HideKeywordScores          bool `json:"hideKeywordScores"`
	HideSentimentScores        bool `json:"hideSentimentScores"`
	HideHighlights             bool `json:"hideHighlights"`
	HideCoachingTips           bool `json:"hideCoachingTips"`
	EnablePostSimulationSurvey bool `json:"enablePostSimulationSurvey"`
	AIPoweredPausesAndFeedback bool `json:"aiPoweredPausesAndFeedback"`
}

// LevelToggle holds the lvl2/lvl3 configuration
type LevelToggle struct {
	IsEnabled bool `json:"isEnabled"`
}

// ScoringMetrics holds the simulationScoringMetrics configuration
type ScoringMetrics struct {
	IsEnabled    bool `json:"isEnabled"`
	KeywordScore int  `json:"keywordScore"`
	ClickScore   int  `json:"clickScore"`
}

// PracticeSettings holds the simPractice configuration
type PracticeSettings struct {
	IsUnlimited       bool `json:"isUnlimited"`
	PreRequisiteLimit int  `json:"preRequisiteLimit"`
}

// Simulation is the stored simulation document. The JSON field names are the
// document's external naming and must stay stable: partial updates are
// applied against these keys.
type Simulation struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	DivisionID   string           `json:"divisionId"`
	DepartmentID string           `json:"departmentId"`
	Type         string           `json:"type"`
	Tags         []string         `json:"tags,omitempty"`
	Status       SimulationStatus `json:"status"`
	Version      int              `json:"version"`

	Script []ScriptLine `json:"script"`
	Prompt string       `json:"prompt,omitempty"`

	// Provider bindings. Set together when a new prompt is provisioned,
	// never independently.
	LLMID   string `json:"llmId,omitempty"`
	AgentID string `json:"agentId,omitempty"`

	EstimatedTimeToAttemptInMins int      `json:"estimatedTimeToAttemptInMins,omitempty"`
	KeyObjectives                []string `json:"keyObjectives,omitempty"`
	OverviewVideo                string   `json:"overviewVideo,omitempty"`
	QuickTips                    []string `json:"quickTips,omitempty"`
	VoiceID                      string   `json:"voiceId,omitempty"`
	Language                     string   `json:"language,omitempty"`
	Mood                         string   `json:"mood,omitempty"`
	VoiceSpeed                   string   `json:"voice_speed,omitempty"`
	SimulationCompletionRepetition int    `json:"simulationCompletionRepetition,omitempty"`
	SimulationMaxRepetition        int    `json:"simulationMaxRepetition,omitempty"`
	FinalSimulationScoreCriteria   string `json:"finalSimulationScoreCriteria,omitempty"`
	IsLocked                       bool   `json:"isLocked,omitempty"`
	AssistantID                    string `json:"assistantId,omitempty"`
	Slides                         []string `json:"slides,omitempty"`

	Lvl1                     *LevelSettings    `json:"lvl1,omitempty"`
	Lvl2                     *LevelToggle      `json:"lvl2,omitempty"`
	Lvl3                     *LevelToggle      `json:"lvl3,omitempty"`
	SimulationScoringMetrics *ScoringMetrics   `json:"simulationScoringMetrics,omitempty"`
	SimPractice              *PracticeSettings `json:"simPractice,omitempty"`

	CreatedBy      string    `json:"createdBy"`
	CreatedOn      time.Time `json:"createdOn"`
	LastModifiedBy string    `json:"lastModifiedBy"`
	LastModified   time.Time `json:"lastModified"`
}

// HasAgent reports whether the simulation has a provisioned voice agent
func (s *Simulation) HasAgent() bool {
	return s.AgentID != ""
}

// ListFilters defines filters for listing simulations
type ListFilters struct {
	DivisionID string
	Status     SimulationStatus
	Limit      int
	Offset     int
}
