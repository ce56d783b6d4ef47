package domain

// Attachment is a placeholder for an uploaded file. Storage is handled by the
// upload service; the portal only tracks name and location.
type Attachment struct {
	Name string `json:"name" validate:"required"`
	URL  string `json:"url"  validate:"required"`
}

// --- Demand-side qualification draft ---

type DemandBasicInfo struct {
	CreditCode      string `json:"credit_code"      validate:"required,credit_code"`
	LegalPerson     string `json:"legal_person"     validate:"required"`
	Size            string `json:"size"             validate:"required,company_size"`
	EstablishedYear string `json:"established_year" validate:"required,numeric,len=4"`
	Address         string `json:"address"          validate:"required"`
	BusinessScope   string `json:"business_scope"   validate:"required,min=20,max=500"`
	MainProducts    string `json:"main_products"    validate:"required"`
}

type DemandCredentials struct {
	BusinessLicense         *Attachment  `json:"business_license"                validate:"required"`
	RegistrationCertificate *Attachment  `json:"registration_certificate"        validate:"required"`
	TaxCertificate          *Attachment  `json:"tax_certificate,omitempty"`
	OtherCertificates       []Attachment `json:"other_certificates,omitempty"     validate:"max=5,dive"`
}

type DemandContactBusiness struct {
	ContactPerson string   `json:"contact_person"           validate:"required"`
	ContactPhone  string   `json:"contact_phone"            validate:"required,cn_mobile"`
	ContactEmail  string   `json:"contact_email"            validate:"required,email"`
	IndustryTags  []string `json:"industry_tags"            validate:"required,min=1,dive,industry"`
	EmployeeCount int      `json:"employee_count"           validate:"required,gte=1"`
	AnnualRevenue string   `json:"annual_revenue,omitempty"`
}

// DemandDraft accumulates the demand-side qualification wizard. Each embedded
// section is validated by its own wizard step.
type DemandDraft struct {
	DemandBasicInfo
	DemandCredentials
	DemandContactBusiness
}

// --- Supply-side registration draft ---

type CapabilityDetail struct {
	Capability      string  `json:"capability"       validate:"required,ai_capability"`
	ExpertiseLevel  int     `json:"expertise_level"  validate:"required,min=1,max=5"`
	TechStack       string  `json:"tech_stack"       validate:"required"`
	CaseDescription string  `json:"case_description" validate:"required,min=50,max=500"`
	ClientCount     int     `json:"client_count,omitempty"  validate:"gte=0"`
	SuccessRate     float64 `json:"success_rate,omitempty"  validate:"gte=0,lte=100"`
}

type IndustryExperience struct {
	Industry       string `json:"industry"        validate:"required,industry"`
	Years          int    `json:"years"           validate:"required,gte=1"`
	NotableClients string `json:"notable_clients" validate:"required"`
	Description    string `json:"description"     validate:"required"`
}

type SuccessCase struct {
	ProjectName  string       `json:"project_name" validate:"required"`
	ClientName   string       `json:"client_name"  validate:"required"`
	Industry     string       `json:"industry"     validate:"required,industry"`
	Duration     string       `json:"duration"     validate:"required"`
	Budget       string       `json:"budget,omitempty"`
	Technologies []string     `json:"technologies" validate:"required,min=1,dive,ai_capability"`
	Background   string       `json:"background"   validate:"required,min=30,max=500"`
	Solution     string       `json:"solution"     validate:"required,min=50,max=800"`
	Results      string       `json:"results"      validate:"required,min=30,max=500"`
	Images       []Attachment `json:"images,omitempty" validate:"dive"`
}

type SupplyBasicInfo struct {
	Name          string `json:"name"           validate:"required"`
	CreditCode    string `json:"credit_code"    validate:"required,credit_code"`
	LegalPerson   string `json:"legal_person"   validate:"required"`
	Size          string `json:"size"           validate:"required,company_size"`
	ContactPerson string `json:"contact_person" validate:"required"`
	ContactPhone  string `json:"contact_phone"  validate:"required,cn_mobile"`
	ContactEmail  string `json:"contact_email"  validate:"required,email"`
	Address       string `json:"address"        validate:"required"`
	BusinessScope string `json:"business_scope" validate:"required,min=20,max=500"`
}

type SupplyCapabilities struct {
	AICapabilities    []string           `json:"ai_capabilities"    validate:"required,min=1,dive,ai_capability"`
	CapabilityDetails []CapabilityDetail `json:"capability_details" validate:"dive"`
}

type SupplyIndustryExperience struct {
	IndustryTags       []string             `json:"industry_tags"             validate:"required,min=1,dive,industry"`
	IndustryExperience []IndustryExperience `json:"industry_experience"       validate:"dive"`
	Certifications     []Attachment         `json:"certifications,omitempty"  validate:"max=5,dive"`
	TeamSize           int                  `json:"team_size"                 validate:"required,gte=1"`
	TeamStructure      string               `json:"team_structure,omitempty"`
}

type SupplySuccessCases struct {
	SuccessCases []SuccessCase `json:"success_cases" validate:"dive"`
}

// SupplyDraft accumulates the supply-side registration wizard.
type SupplyDraft struct {
	SupplyBasicInfo
	SupplyCapabilities
	SupplyIndustryExperience
	SupplySuccessCases
}
