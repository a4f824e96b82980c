package models

// CreateSimulationRequest is the inbound shape for creating a simulation
type CreateSimulationRequest struct {
	Name         string       `json:"name"`
	DivisionID   string       `json:"division_id"`
	DepartmentID string       `json:"department_id"`
	Type         string       `json:"type"`
	Script       []ScriptLine `json:"script"`
	Tags         []string     `json:"tags,omitempty"`
	UserID       string       `json:"user_id"`
}

// CreateSimulationResponse is returned after creating a simulation
type CreateSimulationResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Prompt string `json:"prompt"`
}

// LevelSettingsInput is the inbound lvl1 configuration block
type LevelSettingsInput struct {
	IsEnabled                  bool `json:"is_enabled"`
	EnablePractice             bool `json:"enable_practice"`
	HideAgentScript            bool `json:"hide_agent_script"`
	HideCustomerScript         bool `json:"hide_customer_script"`
	HideKeywordScores          bool `json:"hide_keyword_scores"`
	HideSentimentScores        bool `json:"hide_sentiment_scores"`
	HideHighlights             bool `json:"hide_highlights"`
	HideCoachingTips           bool `json:"hide_coaching_tips"`
	EnablePostSimulationSurvey bool `json:"enable_post_simulation_survey"`
	AIPoweredPausesAndFeedback bool `json:"ai_powered_pauses_and_feedback"`
}

// LevelToggleInput is the inbound lvl2/lvl3 configuration block
type LevelToggleInput struct {
	IsEnabled bool `json:"is_enabled"`
}

// ScoringMetricsInput is the inbound simulation_scoring_metrics block
type ScoringMetricsInput struct {
	IsEnabled    bool `json:"is_enabled"`
	KeywordScore int  `json:"keyword_score"`
	ClickScore   int  `json:"click_score"`
}

// PracticeSettingsInput is the inbound sim_practice block
type PracticeSettingsInput struct {
	IsUnlimited       bool `json:"is_unlimited"`
	PreRequisiteLimit int  `json:"pre_requisite_limit"`
}

// UpdateSimulationRequest is the inbound shape for a partial update. Every
// field is optional; nil means "leave the stored value untouched".
type UpdateSimulationRequest struct {
	Name         *string   `json:"name,omitempty"`
	DivisionID   *string   `json:"division_id,omitempty"`
	DepartmentID *string   `json:"department_id,omitempty"`
	Type         *string   `json:"type,omitempty"`
	Tags         *[]string `json:"tags,omitempty"`
	Status       *string   `json:"status,omitempty"`

	EstimatedTimeToAttemptInMins *int      `json:"estimated_time_to_attempt_in_mins,omitempty"`
	KeyObjectives                *[]string `json:"key_objectives,omitempty"`
	OverviewVideo                *string   `json:"overview_video,omitempty"`
	QuickTips                    *[]string `json:"quick_tips,omitempty"`
	VoiceID                      *string   `json:"voice_id,omitempty"`
	Language                     *string   `json:"language,omitempty"`
	Mood                         *string   `json:"mood,omitempty"`
	VoiceSpeed                   *string   `json:"voice_speed,omitempty"`
	Prompt                       *string   `json:"prompt,omitempty"`
	SimulationCompletionRepetition *int    `json:"simulation_completion_repetition,omitempty"`
	SimulationMaxRepetition        *int    `json:"simulation_max_repetition,omitempty"`
	FinalSimulationScoreCriteria   *string `json:"final_simulation_score_criteria,omitempty"`
	IsLocked                       *bool   `json:"is_locked,omitempty"`
	Version                        *int    `json:"version,omitempty"`
	AssistantID                    *string `json:"assistant_id,omitempty"`
	Slides                         *[]string `json:"slides,omitempty"`

	Script []ScriptLine `json:"script,omitempty"`

	Lvl1                     *LevelSettingsInput    `json:"lvl1,omitempty"`
	Lvl2                     *LevelToggleInput      `json:"lvl2,omitempty"`
	Lvl3                     *LevelToggleInput      `json:"lvl3,omitempty"`
	SimulationScoringMetrics *ScoringMetricsInput   `json:"simulation_scoring_metrics,omitempty"`
	SimPractice              *PracticeSettingsInput `json:"sim_practice,omitempty"`

	UserID string `json:"user_id"`
}

// UpdateSimulationResponse is returned after updating a simulation
type UpdateSimulationResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// PreviewRequest is the inbound shape for starting an audio preview
type PreviewRequest struct {
	UserID string `json:"user_id"`
}

// PreviewResponse is returned after a preview session is created
type PreviewResponse struct {
	AccessToken string `json:"access_token"`
}

// FieldMappings maps inbound scalar/collection field names to their stored
// document keys. Consulted once per update; kept as data so the mapping is
// independently testable.
var FieldMappings = map[string]string{
	"name":                              "name",
	"division_id":                       "divisionId",
	"department_id":                     "departmentId",
	"type":                              "type",
	"tags":                              "tags",
	"status":                            "status",
	"estimated_time_to_attempt_in_mins": "estimatedTimeToAttemptInMins",
	"key_objectives":                    "keyObjectives",
	"overview_video":                    "overviewVideo",
	"quick_tips":                        "quickTips",
	"voice_id":                          "voiceId",
	"language":                          "language",
	"mood":                              "mood",
	"voice_speed":                       "voice_speed",
	"prompt":                            "prompt",
	"simulation_completion_repetition":  "simulationCompletionRepetition",
	"simulation_max_repetition":         "simulationMaxRepetition",
	"final_simulation_score_criteria":   "finalSimulationScoreCriteria",
	"is_locked":                         "isLocked",
	"version":                           "version",
	"assistant_id":                      "assistantId",
	"slides":                            "slides",
}

// ScalarFields returns the scalar and collection fields present in the
// request, keyed by their inbound names. Absent fields are omitted so the
// update stays sparse.
func (r *UpdateSimulationRequest) ScalarFields() map[string]interface{} {
	fields := make(map[string]interface{})

	for name, value := range map[string]*string{
		"name":                            r.Name,
		"division_id":                     r.DivisionID,
		"department_id":                   r.DepartmentID,
		"type":                            r.Type,
		"status":                          r.Status,
		"overview_video":                  r.OverviewVideo,
		"voice_id":                        r.VoiceID,
		"language":                        r.Language,
		"mood":                            r.Mood,
		"voice_speed":                     r.VoiceSpeed,
		"prompt":                          r.Prompt,
		"final_simulation_score_criteria": r.FinalSimulationScoreCriteria,
		"assistant_id":                    r.AssistantID,
	} {
		if value != nil {
			fields[name] = *value
		}
	}

	if r.Tags != nil {
		fields["tags"] = *r.Tags
	}
	if r.KeyObjectives != nil {
		fields["key_objectives"] = *r.KeyObjectives
	}
	if r.QuickTips != nil {
		fields["quick_tips"] = *r.QuickTips
	}
	if r.Slides != nil {
		fields["slides"] = *r.Slides
	}

	if r.EstimatedTimeToAttemptInMins != nil {
		fields["estimated_time_to_attempt_in_mins"] = *r.EstimatedTimeToAttemptInMins
	}
	if r.SimulationCompletionRepetition != nil {
		fields["simulation_completion_repetition"] = *r.SimulationCompletionRepetition
	}
	if r.SimulationMaxRepetition != nil {
		fields["simulation_max_repetition"] = *r.SimulationMaxRepetition
	}
	if r.Version != nil {
		fields["version"] = *r.Version
	}
	if r.IsLocked != nil {
		fields["is_locked"] = *r.IsLocked
	}

	return fields
}
