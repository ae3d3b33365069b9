package generator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"marketpulse/generator"
	"marketpulse/models"
)

func validPost() generator.GeneratedPost {
	return generator.GeneratedPost{
		Title:        "Banks Beat Estimates in Q3",
		Summary:      "Major lenders topped profit forecasts.",
		Content:      "<p>Earnings season opened strong.</p>",
		CategorySlug: "banking",
		Tags:         []string{"banking", "earnings"},
	}
}

func TestValidateAcceptsCompletePayload(t *testing.T) {
	p := validPost()
	assert.NoError(t, p.Validate())
}

func TestValidateRejectsMissingFields(t *testing.T) {
	for _, mutate := range []func(*generator.GeneratedPost){
		func(p *generator.GeneratedPost) { p.Title = "  " },
		func(p *generator.GeneratedPost) { p.Summary = "" },
		func(p *generator.GeneratedPost) { p.Content = "" },
		func(p *generator.GeneratedPost) { p.CategorySlug = "" },
		func(p *generator.GeneratedPost) { p.Tags = nil },
		func(p *generator.GeneratedPost) { p.Tags = []string{" ", ","} },
	} {
		p := validPost()
		mutate(&p)
		assert.ErrorIs(t, p.Validate(), models.ErrSchemaViolation)
	}
}

func TestValidateNormalizesTags(t *testing.T) {
	p := validPost()
	p.Tags = []string{" banking , earnings", "earnings", "", "  rates "}
	assert.NoError(t, p.Validate())
	assert.Equal(t, []string{"banking", "earnings", "rates"}, p.Tags)
}

func TestNormalizeTags(t *testing.T) {
	assert.Nil(t, generator.NormalizeTags(nil))
	assert.Nil(t, generator.NormalizeTags([]string{"", " ", ","}))
	assert.Equal(t,
		[]string{"Fed", "NASDAQ", "crude oil"},
		generator.NormalizeTags([]string{"Fed, NASDAQ", " crude oil ", "Fed"}))
}
