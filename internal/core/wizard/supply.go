package wizard

import (
	"fmt"
	"strconv"

	"github.com/aimatch/portal/internal/core/domain"
)

var supplyVariant = variant[domain.SupplyDraft]{
	kind: domain.WizardSupplyRegistration,
	steps: []step[domain.SupplyDraft]{
		{
			key:     "basic_info",
			title:   "Enterprise information",
			section: func(d *domain.SupplyDraft) any { return &d.SupplyBasicInfo },
		},
		{
			key:     "ai_capabilities",
			title:   "AI capabilities",
			section: func(d *domain.SupplyDraft) any { return &d.SupplyCapabilities },
			groups:  []string{"capability_details"},
		},
		{
			key:     "industry_experience",
			title:   "Industry experience",
			section: func(d *domain.SupplyDraft) any { return &d.SupplyIndustryExperience },
			groups:  []string{"industry_experience", "certifications"},
		},
		{
			key:     "success_cases",
			title:   "Success cases",
			section: func(d *domain.SupplyDraft) any { return &d.SupplySuccessCases },
			groups:  []string{"success_cases"},
		},
	},
	score:   Scoring.ScoreSupply,
	preview: previewSupply,
}

// NewSupply starts a supplier registration wizard pre-seeded with seed.
func NewSupply(id string, cfg Config, seed domain.SupplyDraft, submit SubmitFunc[domain.SupplyDraft]) *Wizard[domain.SupplyDraft] {
	return newWizard(id, supplyVariant, cfg, seed, submit)
}

func previewSupply(d domain.SupplyDraft) []PreviewSection {
	details := make([]PreviewField, 0, len(d.CapabilityDetails))
	for _, cd := range d.CapabilityDetails {
		details = append(details, PreviewField{
			Label: domain.OptionLabel(domain.AICapabilities, cd.Capability),
			Value: fmt.Sprintf("%s, %s", expertise(cd.ExpertiseLevel), cd.TechStack),
		})
	}

	experience := make([]PreviewField, 0, len(d.IndustryExperience)+3)
	experience = append(experience,
		PreviewField{"Industries", domain.OptionLabels(domain.Industries, d.IndustryTags)},
		PreviewField{"Team size", countOrEmpty(d.TeamSize)},
		PreviewField{"Certifications", strconv.Itoa(len(d.Certifications)) + " file(s)"},
	)
	for _, ie := range d.IndustryExperience {
		experience = append(experience, PreviewField{
			Label: domain.OptionLabel(domain.Industries, ie.Industry),
			Value: fmt.Sprintf("%d year(s), %s", ie.Years, ie.NotableClients),
		})
	}

	cases := make([]PreviewField, 0, len(d.SuccessCases))
	for _, sc := range d.SuccessCases {
		cases = append(cases, PreviewField{Label: sc.ProjectName, Value: sc.ClientName})
	}

	return []PreviewSection{
		{
			Key:   "basic_info",
			Title: "Enterprise information",
			Fields: []PreviewField{
				{"Name", d.Name},
				{"Unified social credit code", d.CreditCode},
				{"Legal representative", d.LegalPerson},
				{"Company size", domain.OptionLabel(domain.CompanySizes, d.Size)},
				{"Contact person", d.ContactPerson},
				{"Contact phone", d.ContactPhone},
				{"Contact email", d.ContactEmail},
				{"Address", d.Address},
				{"Business scope", d.BusinessScope},
			},
		},
		{
			Key:    "ai_capabilities",
			Title:  "AI capabilities",
			Fields: append([]PreviewField{{"Directions", domain.OptionLabels(domain.AICapabilities, d.AICapabilities)}}, details...),
		},
		{Key: "industry_experience", Title: "Industry experience", Fields: experience},
		{Key: "success_cases", Title: "Success cases", Fields: cases},
	}
}

func expertise(level int) string {
	if level < 1 || level >= len(domain.ExpertiseLevels) {
		return "unrated"
	}
	return domain.ExpertiseLevels[level]
}
