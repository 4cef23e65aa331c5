package domain

import (
	"time"

	"github.com/google/uuid"
)

// Analysis is the parent aggregate a dossier is produced for: one
// employee under review within one organization. The CRUD surface for
// analyses lives elsewhere in the product; this service reads them to
// assemble dispatch payloads and to scope jobs and assignments.
type Analysis struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	SubjectName    string    `json:"subject_name"`
	SubjectRole    string    `json:"subject_role"`
	Department     string    `json:"department"`
	CreatedAt      time.Time `json:"created_at"`
}

// Transcript is a free-text interview or meeting transcript attached
// to an analysis. Empty transcripts are skipped during payload
// assembly.
type Transcript struct {
	ID         uuid.UUID `json:"id"`
	AnalysisID uuid.UUID `json:"analysis_id"`
	Title      string    `json:"title"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

// Document is an uploaded file attached to an analysis, reduced here
// to its extracted text. Documents whose extraction produced no text
// are skipped during payload assembly.
type Document struct {
	ID            uuid.UUID `json:"id"`
	AnalysisID    uuid.UUID `json:"analysis_id"`
	FileName      string    `json:"file_name"`
	ExtractedText string    `json:"extracted_text"`
	CreatedAt     time.Time `json:"created_at"`
}
