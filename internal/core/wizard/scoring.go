package wizard

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aimatch/portal/internal/core/domain"
)

// Band is the coarse completeness hint shown next to the score.
type Band string

const (
	BandInsufficient Band = "insufficient"
	BandGood         Band = "good"
	BandExcellent    Band = "excellent"
)

// DemandWeights are the points each demand qualification field contributes.
type DemandWeights struct {
	CreditCode              int `yaml:"credit_code"`
	LegalPerson             int `yaml:"legal_person"`
	Size                    int `yaml:"size"`
	Address                 int `yaml:"address"`
	BusinessScope           int `yaml:"business_scope"`
	BusinessScopeMinLength  int `yaml:"business_scope_min_length"`
	BusinessLicense         int `yaml:"business_license"`
	RegistrationCertificate int `yaml:"registration_certificate"`
	TaxCertificate          int `yaml:"tax_certificate"`
	OtherCertificates       int `yaml:"other_certificates"`
	ContactPerson           int `yaml:"contact_person"`
	ContactPhone            int `yaml:"contact_phone"`
	ContactEmail            int `yaml:"contact_email"`
	IndustryTags            int `yaml:"industry_tags"`
	MainProducts            int `yaml:"main_products"`
	AnnualRevenue           int `yaml:"annual_revenue"`
	EstablishedYear         int `yaml:"established_year"`
}

// SupplyWeights are the points each supply registration field contributes.
// A bonus is awarded on top of the base points once a list reaches its
// BonusAt length.
type SupplyWeights struct {
	Name          int `yaml:"name"`
	CreditCode    int `yaml:"credit_code"`
	LegalPerson   int `yaml:"legal_person"`
	Size          int `yaml:"size"`
	ContactPerson int `yaml:"contact_person"`
	ContactPhone  int `yaml:"contact_phone"`
	ContactEmail  int `yaml:"contact_email"`
	BusinessScope int `yaml:"business_scope"`

	AICapabilities        int `yaml:"ai_capabilities"`
	AICapabilitiesBonus   int `yaml:"ai_capabilities_bonus"`
	AICapabilitiesBonusAt int `yaml:"ai_capabilities_bonus_at"`

	CapabilityDetails        int `yaml:"capability_details"`
	CapabilityDetailsBonus   int `yaml:"capability_details_bonus"`
	CapabilityDetailsBonusAt int `yaml:"capability_details_bonus_at"`

	IndustryTags        int `yaml:"industry_tags"`
	IndustryTagsBonus   int `yaml:"industry_tags_bonus"`
	IndustryTagsBonusAt int `yaml:"industry_tags_bonus_at"`

	IndustryExperience int `yaml:"industry_experience"`

	SuccessCases        int `yaml:"success_cases"`
	SuccessCasesBonus   int `yaml:"success_cases_bonus"`
	SuccessCasesBonusAt int `yaml:"success_cases_bonus_at"`
}

// Scoring holds the submit threshold, the excellent band and all weights.
type Scoring struct {
	Threshold int           `yaml:"threshold"`
	Excellent int           `yaml:"excellent"`
	Demand    DemandWeights `yaml:"demand"`
	Supply    SupplyWeights `yaml:"supply"`
}

// DefaultScoring returns the marketplace's standard weights. Both variants
// sum to exactly 100 when every field is filled.
func DefaultScoring() Scoring {
	return Scoring{
		Threshold: 60,
		Excellent: 80,
		Demand: DemandWeights{
			CreditCode:              8,
			LegalPerson:             5,
			Size:                    5,
			Address:                 5,
			BusinessScope:           7,
			BusinessScopeMinLength:  20,
			BusinessLicense:         15,
			RegistrationCertificate: 10,
			TaxCertificate:          10,
			OtherCertificates:       5,
			ContactPerson:           5,
			ContactPhone:            5,
			ContactEmail:            5,
			IndustryTags:            5,
			MainProducts:            5,
			AnnualRevenue:           3,
			EstablishedYear:         2,
		},
		Supply: SupplyWeights{
			Name:          5,
			CreditCode:    5,
			LegalPerson:   3,
			Size:          3,
			ContactPerson: 3,
			ContactPhone:  3,
			ContactEmail:  3,
			BusinessScope: 5,

			AICapabilities:        10,
			AICapabilitiesBonus:   5,
			AICapabilitiesBonusAt: 3,

			CapabilityDetails:        10,
			CapabilityDetailsBonus:   10,
			CapabilityDetailsBonusAt: 2,

			IndustryTags:        5,
			IndustryTagsBonus:   5,
			IndustryTagsBonusAt: 3,

			IndustryExperience: 10,

			SuccessCases:        8,
			SuccessCasesBonus:   7,
			SuccessCasesBonusAt: 2,
		},
	}
}

// Validate rejects negative weights and out-of-range thresholds.
func (s Scoring) Validate() error {
	var errs []error
	if s.Threshold < 0 || s.Threshold > 100 {
		errs = append(errs, fmt.Errorf("threshold %d out of range [0,100]", s.Threshold))
	}
	if s.Excellent < s.Threshold || s.Excellent > 100 {
		errs = append(errs, fmt.Errorf("excellent %d must be within [threshold,100]", s.Excellent))
	}
	for name, w := range s.weights() {
		if w < 0 {
			errs = append(errs, fmt.Errorf("weight %s is negative (%d)", name, w))
		}
	}
	return errors.Join(errs...)
}

func (s Scoring) weights() map[string]int {
	d, p := s.Demand, s.Supply
	return map[string]int{
		"demand.credit_code":               d.CreditCode,
		"demand.legal_person":              d.LegalPerson,
		"demand.size":                      d.Size,
		"demand.address":                   d.Address,
		"demand.business_scope":            d.BusinessScope,
		"demand.business_scope_min_length": d.BusinessScopeMinLength,
		"demand.business_license":          d.BusinessLicense,
		"demand.registration_certificate":  d.RegistrationCertificate,
		"demand.tax_certificate":           d.TaxCertificate,
		"demand.other_certificates":        d.OtherCertificates,
		"demand.contact_person":            d.ContactPerson,
		"demand.contact_phone":             d.ContactPhone,
		"demand.contact_email":             d.ContactEmail,
		"demand.industry_tags":             d.IndustryTags,
		"demand.main_products":             d.MainProducts,
		"demand.annual_revenue":            d.AnnualRevenue,
		"demand.established_year":          d.EstablishedYear,
		"supply.name":                      p.Name,
		"supply.credit_code":               p.CreditCode,
		"supply.legal_person":              p.LegalPerson,
		"supply.size":                      p.Size,
		"supply.contact_person":            p.ContactPerson,
		"supply.contact_phone":             p.ContactPhone,
		"supply.contact_email":             p.ContactEmail,
		"supply.business_scope":            p.BusinessScope,
		"supply.ai_capabilities":           p.AICapabilities,
		"supply.ai_capabilities_bonus":     p.AICapabilitiesBonus,
		"supply.capability_details":        p.CapabilityDetails,
		"supply.capability_details_bonus":  p.CapabilityDetailsBonus,
		"supply.industry_tags":             p.IndustryTags,
		"supply.industry_tags_bonus":       p.IndustryTagsBonus,
		"supply.industry_experience":       p.IndustryExperience,
		"supply.success_cases":             p.SuccessCases,
		"supply.success_cases_bonus":       p.SuccessCasesBonus,
	}
}

// Band classifies score against the configured thresholds.
func (s Scoring) Band(score int) Band {
	switch {
	case score >= s.Excellent:
		return BandExcellent
	case score >= s.Threshold:
		return BandGood
	default:
		return BandInsufficient
	}
}

// CanSubmit reports whether score clears the submit threshold.
func (s Scoring) CanSubmit(score int) bool {
	return score >= s.Threshold
}

// ScoreDemand computes the completeness of a demand qualification draft.
func (s Scoring) ScoreDemand(d domain.DemandDraft) int {
	w := s.Demand
	score := 0

	score += when(filled(d.CreditCode), w.CreditCode)
	score += when(filled(d.LegalPerson), w.LegalPerson)
	score += when(filled(d.Size), w.Size)
	score += when(filled(d.Address), w.Address)
	score += when(filled(d.BusinessScope) && utf8.RuneCountInString(d.BusinessScope) >= w.BusinessScopeMinLength, w.BusinessScope)

	score += when(d.BusinessLicense != nil, w.BusinessLicense)
	score += when(d.RegistrationCertificate != nil, w.RegistrationCertificate)
	score += when(d.TaxCertificate != nil, w.TaxCertificate)
	score += when(len(d.OtherCertificates) > 0, w.OtherCertificates)

	score += when(filled(d.ContactPerson), w.ContactPerson)
	score += when(filled(d.ContactPhone), w.ContactPhone)
	score += when(filled(d.ContactEmail), w.ContactEmail)

	score += when(len(d.IndustryTags) > 0, w.IndustryTags)
	score += when(filled(d.MainProducts), w.MainProducts)
	score += when(filled(d.AnnualRevenue), w.AnnualRevenue)
	score += when(filled(d.EstablishedYear), w.EstablishedYear)

	return clamp(score)
}

// ScoreSupply computes the completeness of a supply registration draft.
func (s Scoring) ScoreSupply(d domain.SupplyDraft) int {
	w := s.Supply
	score := 0

	score += when(filled(d.Name), w.Name)
	score += when(filled(d.CreditCode), w.CreditCode)
	score += when(filled(d.LegalPerson), w.LegalPerson)
	score += when(filled(d.Size), w.Size)
	score += when(filled(d.ContactPerson), w.ContactPerson)
	score += when(filled(d.ContactPhone), w.ContactPhone)
	score += when(filled(d.ContactEmail), w.ContactEmail)
	score += when(filled(d.BusinessScope), w.BusinessScope)

	score += tiered(len(d.AICapabilities), w.AICapabilities, w.AICapabilitiesBonus, w.AICapabilitiesBonusAt)
	score += tiered(len(d.CapabilityDetails), w.CapabilityDetails, w.CapabilityDetailsBonus, w.CapabilityDetailsBonusAt)
	score += tiered(len(d.IndustryTags), w.IndustryTags, w.IndustryTagsBonus, w.IndustryTagsBonusAt)
	score += when(len(d.IndustryExperience) > 0, w.IndustryExperience)
	score += tiered(len(d.SuccessCases), w.SuccessCases, w.SuccessCasesBonus, w.SuccessCasesBonusAt)

	return clamp(score)
}

func filled(s string) bool { return strings.TrimSpace(s) != "" }

func when(ok bool, points int) int {
	if ok {
		return points
	}
	return 0
}

// tiered awards base for a non-empty list and bonus once n reaches bonusAt.
func tiered(n, base, bonus, bonusAt int) int {
	if n == 0 {
		return 0
	}
	if bonusAt > 0 && n >= bonusAt {
		return base + bonus
	}
	return base
}

func clamp(score int) int {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return score
	}
}
