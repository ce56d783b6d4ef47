package wizard

import (
	"strconv"

	"github.com/aimatch/portal/internal/core/domain"
)

var demandVariant = variant[domain.DemandDraft]{
	kind: domain.WizardDemandQualification,
	steps: []step[domain.DemandDraft]{
		{
			key:     "basic_info",
			title:   "Enterprise information",
			section: func(d *domain.DemandDraft) any { return &d.DemandBasicInfo },
		},
		{
			key:     "credentials",
			title:   "Qualification documents",
			section: func(d *domain.DemandDraft) any { return &d.DemandCredentials },
			groups:  []string{"other_certificates"},
		},
		{
			key:     "contact_business",
			title:   "Contact and business",
			section: func(d *domain.DemandDraft) any { return &d.DemandContactBusiness },
		},
	},
	score:   Scoring.ScoreDemand,
	preview: previewDemand,
}

// NewDemand starts a demand qualification wizard pre-seeded with seed.
func NewDemand(id string, cfg Config, seed domain.DemandDraft, submit SubmitFunc[domain.DemandDraft]) *Wizard[domain.DemandDraft] {
	return newWizard(id, demandVariant, cfg, seed, submit)
}

func previewDemand(d domain.DemandDraft) []PreviewSection {
	return []PreviewSection{
		{
			Key:   "basic_info",
			Title: "Enterprise information",
			Fields: []PreviewField{
				{"Unified social credit code", d.CreditCode},
				{"Legal representative", d.LegalPerson},
				{"Company size", domain.OptionLabel(domain.CompanySizes, d.Size)},
				{"Established", d.EstablishedYear},
				{"Address", d.Address},
				{"Business scope", d.BusinessScope},
				{"Main products", d.MainProducts},
			},
		},
		{
			Key:   "credentials",
			Title: "Qualification documents",
			Fields: []PreviewField{
				{"Business license", uploaded(d.BusinessLicense)},
				{"Registration certificate", uploaded(d.RegistrationCertificate)},
				{"Tax certificate", uploaded(d.TaxCertificate)},
				{"Other certificates", strconv.Itoa(len(d.OtherCertificates)) + " file(s)"},
			},
		},
		{
			Key:   "contact_business",
			Title: "Contact and business",
			Fields: []PreviewField{
				{"Contact person", d.ContactPerson},
				{"Contact phone", d.ContactPhone},
				{"Contact email", d.ContactEmail},
				{"Industries", domain.OptionLabels(domain.Industries, d.IndustryTags)},
				{"Employees", countOrEmpty(d.EmployeeCount)},
				{"Annual revenue", d.AnnualRevenue},
			},
		},
	}
}

func uploaded(a *domain.Attachment) string {
	if a == nil {
		return "not uploaded"
	}
	return a.Name
}

func countOrEmpty(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}
