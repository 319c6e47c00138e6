package payroll

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// KindOf returns the declared kind of a setting name. Undeclared names are free-form strings.
func KindOf(name string) payroll.SettingKind {
	if spec, ok := payroll.SettingSpecs[name]; ok {
		return spec.Kind
	}
	return payroll.KindString
}

// ParseSettingValue reads raw as kind. Failures are *payroll.ConfigurationError.
func ParseSettingValue(name string, kind payroll.SettingKind, raw string) (payroll.SettingValue, error) {
	v := payroll.SettingValue{Kind: kind}
	raw = strings.TrimSpace(raw)

	switch kind {
	case payroll.KindNumber:
		n, err := decimal.NewFromString(raw)
		if err != nil {
			return v, &payroll.ConfigurationError{Setting: name, Reason: fmt.Sprintf("value %q is not a number", raw)}
		}
		if n.IsNegative() {
			return v, &payroll.ConfigurationError{Setting: name, Reason: "value must not be negative"}
		}
		v.Number = n

	case payroll.KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return v, &payroll.ConfigurationError{Setting: name, Reason: fmt.Sprintf("value %q is not a boolean", raw)}
		}
		v.Bool = b

	case payroll.KindSlabs:
		slabs, err := parseSlabs(raw)
		if err != nil {
			return v, &payroll.ConfigurationError{Setting: name, Reason: err.Error()}
		}
		v.Slabs = slabs

	case payroll.KindAmounts:
		var amounts map[string]decimal.Decimal
		if err := json.Unmarshal([]byte(raw), &amounts); err != nil {
			return v, &payroll.ConfigurationError{Setting: name, Reason: "value is not a JSON object of amounts"}
		}
		for label, amount := range amounts {
			if strings.TrimSpace(label) == "" || amount.IsNegative() {
				return v, &payroll.ConfigurationError{Setting: name, Reason: fmt.Sprintf("invalid amount entry %q", label)}
			}
		}
		v.Amounts = amounts

	default:
		v.Text = raw
	}
	return v, nil
}

// parseSlabs requires ascending upper bounds with exactly one open top slab at the end.
func parseSlabs(raw string) ([]payroll.PTSlab, error) {
	var slabs []payroll.PTSlab
	if err := json.Unmarshal([]byte(raw), &slabs); err != nil {
		return nil, fmt.Errorf("value is not a JSON array of slabs")
	}
	if len(slabs) == 0 {
		return nil, fmt.Errorf("at least one slab is required")
	}

	for i, s := range slabs {
		if s.Amount.IsNegative() {
			return nil, fmt.Errorf("slab %d has a negative amount", i)
		}
		last := i == len(slabs)-1
		if s.UpTo == nil {
			if !last {
				return nil, fmt.Errorf("only the last slab may be open ended")
			}
			continue
		}
		if last {
			return nil, fmt.Errorf("the last slab must be open ended")
		}
		if i > 0 && !s.UpTo.GreaterThan(*slabs[i-1].UpTo) {
			return nil, fmt.Errorf("slab upper bounds must be ascending")
		}
	}
	return slabs, nil
}

// ParseSettings builds the calculator's typed settings. A required setting that is
// missing or unreadable fails the whole calculation; nothing defaults to zero.
func ParseSettings(stored []payroll.Setting) (payroll.Settings, error) {
	raw := make(map[string]string, len(stored))
	for _, s := range stored {
		raw[s.Name] = s.Value
	}

	names := make([]string, 0, len(payroll.SettingSpecs))
	for name := range payroll.SettingSpecs {
		names = append(names, name)
	}
	sort.Strings(names)

	values := make(map[string]payroll.SettingValue, len(names))
	for _, name := range names {
		spec := payroll.SettingSpecs[name]
		value, ok := raw[name]
		if !ok || strings.TrimSpace(value) == "" {
			if spec.Required {
				return payroll.Settings{}, &payroll.ConfigurationError{Setting: name, Reason: "setting is missing"}
			}
			continue
		}
		parsed, err := ParseSettingValue(name, spec.Kind, value)
		if err != nil {
			return payroll.Settings{}, err
		}
		values[name] = parsed
	}

	settings := payroll.Settings{
		Prorate:         true,
		PFRate:          values[payroll.SettingPFRate].Number,
		PFWageCeiling:   values[payroll.SettingPFWageCeiling].Number,
		ESIRate:         values[payroll.SettingESIRate].Number,
		ESIGrossCeiling: values[payroll.SettingESIGrossCeiling].Number,
		PTSlabs:         values[payroll.SettingPTSlabs].Slabs,
		FixedDeductions: values[payroll.SettingFixedDeductions].Amounts,
	}
	if v, ok := values[payroll.SettingProrate]; ok {
		settings.Prorate = v.Bool
	}
	if v, ok := values[payroll.SettingTDSAmount]; ok {
		tds := v.Number
		settings.TDSOverride = &tds
	}
	if v, ok := values[payroll.SettingLoanAmount]; ok {
		loan := v.Number
		settings.LoanOverride = &loan
	}

	for _, name := range []string{payroll.SettingPFRate, payroll.SettingESIRate} {
		if values[name].Number.GreaterThan(decimal.NewFromInt(1)) {
			return payroll.Settings{}, &payroll.ConfigurationError{Setting: name, Reason: "rate must be a fraction between 0 and 1"}
		}
	}
	return settings, nil
}
