package payroll

import (
	"testing"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeSettings() []payroll.Setting {
	return []payroll.Setting{
		{Name: payroll.SettingPFRate, Value: "0.12"},
		{Name: payroll.SettingPFWageCeiling, Value: "15000"},
		{Name: payroll.SettingESIRate, Value: "0.0075"},
		{Name: payroll.SettingESIGrossCeiling, Value: "21000"},
		{Name: payroll.SettingPTSlabs, Value: `[{"upto": 15000, "amount": 0}, {"upto": 20000, "amount": 150}, {"upto": null, "amount": 200}]`},
	}
}

func without(settings []payroll.Setting, name string) []payroll.Setting {
	out := make([]payroll.Setting, 0, len(settings))
	for _, s := range settings {
		if s.Name != name {
			out = append(out, s)
		}
	}
	return out
}

func with(settings []payroll.Setting, name, value string) []payroll.Setting {
	return append(without(settings, name), payroll.Setting{Name: name, Value: value})
}

func TestParseSettings_Complete(t *testing.T) {
	// Act
	s, err := ParseSettings(completeSettings())

	// Assert
	require.NoError(t, err)
	assert.True(t, s.Prorate)
	assert.Equal(t, "0.12", s.PFRate.String())
	assert.Len(t, s.PTSlabs, 3)
	assert.Nil(t, s.PTSlabs[2].UpTo)
	assert.Nil(t, s.TDSOverride)
	assert.Nil(t, s.LoanOverride)
}

func TestParseSettings_OptionalValues(t *testing.T) {
	stored := with(completeSettings(), payroll.SettingProrate, "false")
	stored = with(stored, payroll.SettingTDSAmount, "750")
	stored = with(stored, payroll.SettingFixedDeductions, `{"Canteen": 300}`)

	s, err := ParseSettings(stored)

	require.NoError(t, err)
	assert.False(t, s.Prorate)
	require.NotNil(t, s.TDSOverride)
	assert.Equal(t, "750", s.TDSOverride.String())
	assert.Equal(t, "300", s.FixedDeductions["Canteen"].String())
}

func TestParseSettings_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name    string
		stored  []payroll.Setting
		setting string
	}{
		{"missing rate", without(completeSettings(), payroll.SettingPFRate), payroll.SettingPFRate},
		{"blank ceiling", with(completeSettings(), payroll.SettingESIGrossCeiling, " "), payroll.SettingESIGrossCeiling},
		{"non numeric", with(completeSettings(), payroll.SettingPFWageCeiling, "fifteen thousand"), payroll.SettingPFWageCeiling},
		{"negative number", with(completeSettings(), payroll.SettingESIRate, "-0.01"), payroll.SettingESIRate},
		{"rate above one", with(completeSettings(), payroll.SettingPFRate, "12"), payroll.SettingPFRate},
		{"bad bool", with(completeSettings(), payroll.SettingProrate, "maybe"), payroll.SettingProrate},
		{"slabs not json", with(completeSettings(), payroll.SettingPTSlabs, "200"), payroll.SettingPTSlabs},
		{"slabs without open top", with(completeSettings(), payroll.SettingPTSlabs, `[{"upto": 15000, "amount": 0}]`), payroll.SettingPTSlabs},
		{"slabs descending", with(completeSettings(), payroll.SettingPTSlabs, `[{"upto": 20000, "amount": 0}, {"upto": 15000, "amount": 150}, {"upto": null, "amount": 200}]`), payroll.SettingPTSlabs},
		{"open slab in the middle", with(completeSettings(), payroll.SettingPTSlabs, `[{"upto": null, "amount": 0}, {"upto": null, "amount": 200}]`), payroll.SettingPTSlabs},
		{"bad fixed deductions", with(completeSettings(), payroll.SettingFixedDeductions, `{"Canteen": -1}`), payroll.SettingFixedDeductions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSettings(tt.stored)

			var cfgErr *payroll.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.setting, cfgErr.Setting)
		})
	}
}

func TestParseSettingValue_UnknownNameIsString(t *testing.T) {
	v, err := ParseSettingValue("company.label", KindOf("company.label"), " Acme ")

	require.NoError(t, err)
	assert.Equal(t, payroll.KindString, v.Kind)
	assert.Equal(t, "Acme", v.Text)
}
