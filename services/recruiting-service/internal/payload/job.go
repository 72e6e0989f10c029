package payload

type CreateJobRequest struct {
	Title          string   `json:"title"           validate:"required,max=200"`
	Description    string   `json:"description"     validate:"required,max=10000"`
	Location       string   `json:"location"        validate:"max=200"`
	EmploymentType string   `json:"employment_type" validate:"omitempty,oneof=full-time part-time internship contract"`
	Skills         []string `json:"skills"          validate:"max=30,dive,max=60"`
}
