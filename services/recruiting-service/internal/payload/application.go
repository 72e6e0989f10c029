package payload

type ApplyRequest struct {
	CoverLetter string   `json:"cover_letter" validate:"max=5000"`
	ResumeURL   string   `json:"resume_url"   validate:"omitempty,url,max=2048"`
	ATSScore    *float64 `json:"ats_score"    validate:"omitempty,gte=0,lte=100"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
