package wizard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimatch/portal/internal/core/domain"
)

func TestScore_EmptyDraftIsZero(t *testing.T) {
	s := DefaultScoring()
	assert.Equal(t, 0, s.ScoreDemand(domain.DemandDraft{}))
	assert.Equal(t, 0, s.ScoreSupply(domain.SupplyDraft{}))
}

func TestScoreDemand_BasicInfoOnly(t *testing.T) {
	d := domain.DemandDraft{}
	d.CreditCode = "91500000MA5U7ABC12"
	d.LegalPerson = "Li Wei"
	d.Size = "medium"
	d.Address = "Chongqing"
	d.BusinessScope = strings.Repeat("a", 25)

	assert.Equal(t, 30, DefaultScoring().ScoreDemand(d))
}

func TestScoreDemand_ShortBusinessScopeEarnsNothing(t *testing.T) {
	d := domain.DemandDraft{}
	d.BusinessScope = strings.Repeat("x", 19)
	assert.Equal(t, 0, DefaultScoring().ScoreDemand(d))

	// Rune count, not bytes.
	d.BusinessScope = strings.Repeat("智", 20)
	assert.Equal(t, 7, DefaultScoring().ScoreDemand(d))
}

func TestScoreDemand_WhitespaceIsEmpty(t *testing.T) {
	d := domain.DemandDraft{}
	d.CreditCode = "   "
	d.MainProducts = "\t"
	assert.Equal(t, 0, DefaultScoring().ScoreDemand(d))
}

func TestScoreDemand_FullDraftIs100(t *testing.T) {
	d := validDemandDraft()
	d.TaxCertificate = &domain.Attachment{Name: "tax.pdf", URL: "https://files/tax"}
	d.OtherCertificates = []domain.Attachment{{Name: "iso.pdf", URL: "https://files/iso"}}
	d.AnnualRevenue = "10M"

	assert.Equal(t, 100, DefaultScoring().ScoreDemand(d))
}

func TestScoreSupply_BelowThreshold(t *testing.T) {
	d := supplyBasicsWithCapabilities()

	s := DefaultScoring()
	score := s.ScoreSupply(d)
	assert.Equal(t, 55, score)
	assert.False(t, s.CanSubmit(score))
	assert.Equal(t, BandInsufficient, s.Band(score))
}

func TestScoreSupply_Bonuses(t *testing.T) {
	s := DefaultScoring()
	d := domain.SupplyDraft{}

	d.AICapabilities = []string{"nlp", "speech"}
	assert.Equal(t, 10, s.ScoreSupply(d))
	d.AICapabilities = append(d.AICapabilities, "ai_chip")
	assert.Equal(t, 15, s.ScoreSupply(d))

	d.SuccessCases = []domain.SuccessCase{{}, {}}
	assert.Equal(t, 30, s.ScoreSupply(d))
}

func TestScore_Monotonic(t *testing.T) {
	s := DefaultScoring()
	d := domain.SupplyDraft{}
	prev := s.ScoreSupply(d)

	steps := []func(*domain.SupplyDraft){
		func(d *domain.SupplyDraft) { d.Name = "Xiaoyi" },
		func(d *domain.SupplyDraft) { d.IndustryTags = []string{"finance"} },
		func(d *domain.SupplyDraft) { d.IndustryTags = append(d.IndustryTags, "retail", "energy") },
		func(d *domain.SupplyDraft) { d.IndustryExperience = []domain.IndustryExperience{{}} },
		func(d *domain.SupplyDraft) { d.CapabilityDetails = []domain.CapabilityDetail{{}} },
	}
	for _, apply := range steps {
		apply(&d)
		next := s.ScoreSupply(d)
		assert.GreaterOrEqual(t, next, prev)
		prev = next
	}
}

func TestScore_ClampedTo100(t *testing.T) {
	s := DefaultScoring()
	s.Demand.CreditCode = 500
	d := domain.DemandDraft{}
	d.CreditCode = "X"
	assert.Equal(t, 100, s.ScoreDemand(d))
}

func TestBand(t *testing.T) {
	s := DefaultScoring()
	assert.Equal(t, BandInsufficient, s.Band(59))
	assert.Equal(t, BandGood, s.Band(60))
	assert.Equal(t, BandGood, s.Band(79))
	assert.Equal(t, BandExcellent, s.Band(80))
}

func TestScoringValidate(t *testing.T) {
	require.NoError(t, DefaultScoring().Validate())

	s := DefaultScoring()
	s.Supply.SuccessCases = -1
	s.Threshold = 120
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "supply.success_cases")
	assert.Contains(t, err.Error(), "threshold")
}
