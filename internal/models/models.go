package models

import (
	"time"
)

// IngredientRisk represents a single assessed ingredient
type IngredientRisk struct {
	Name      string `json:"name"`
	RiskLevel string `json:"risk_level"`
	Comment   string `json:"comment,omitempty"`
}

// AssessmentResult represents the complete health assessment of a product.
// ImageData and ReportData may arrive as large inline base64 blobs; the
// fetcher nulls them out above the inline-blob cap before the result is
// returned or cached.
type AssessmentResult struct {
	ProductID   string           `json:"product_id"`
	Name        string           `json:"name"`
	Brand       string           `json:"brand,omitempty"`
	MeatType    string           `json:"meat_type,omitempty"`
	Grade       string           `json:"grade"`
	RiskScore   float64          `json:"risk_score"`
	Summary     string           `json:"summary,omitempty"`
	Ingredients []IngredientRisk `json:"ingredients,omitempty"`
	ImageData   *string          `json:"image_data,omitempty"`
	ReportData  *string          `json:"report_data,omitempty"`
	GeneratedAt time.Time        `json:"generated_at"`
	Cached      bool             `json:"cached"`
}

// CacheStats summarizes the durable cache tier for observability
type CacheStats struct {
	Count      int   `json:"count"`
	TotalBytes int64 `json:"total_bytes"`
}

// AuthStatus reports whether a credential is currently stored
type AuthStatus struct {
	Authenticated bool `json:"authenticated"`
}

// StoreCredentialRequest represents a request to persist a bearer credential
type StoreCredentialRequest struct {
	Token string `json:"token"`
}

// LogSeverity represents the severity level of a log entry
type LogSeverity string

const (
	LogSeverityLow    LogSeverity = "low"
	LogSeverityMedium LogSeverity = "medium"
	LogSeverityHigh   LogSeverity = "high"
)

// ProcessType represents the type of process that created the log
type ProcessType string

const (
	ProcessTypeRequest  ProcessType = "request"
	ProcessTypeInternal ProcessType = "internal"
)

// LogEvent represents a process-specific logging context
type LogEvent struct {
	ProcessID   string      `json:"process_id"`
	ProcessType ProcessType `json:"process_type"`
	StartTime   time.Time   `json:"start_time"`
	ClientIP    string      `json:"client_ip,omitempty"`
}

// LogEntry represents a structured log entry for database storage
type LogEntry struct {
	ID          string                 `json:"id"`
	Timestamp   time.Time              `json:"timestamp"`
	Severity    LogSeverity            `json:"severity,omitempty"`
	Message     string                 `json:"message"`
	Operation   string                 `json:"operation"`
	TargetName  string                 `json:"target_name,omitempty"`
	ProcessID   string                 `json:"process_id"`
	ProcessType ProcessType            `json:"process_type"`
	ClientIP    string                 `json:"client_ip,omitempty"`
	Error       string                 `json:"error,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}
