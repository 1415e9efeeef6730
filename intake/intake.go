package intake

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/eino-contrib/jsonschema"
	jsonpatch "github.com/evanphx/json-patch/v5"
)

// Stage is the conversation position carried across turns. Exactly one stage is
// active per session.
type Stage string

const (
	StageIdle             Stage = "idle"
	StageIntake           Stage = "intake"
	StageConfirmIdentity  Stage = "confirm_identity"
	StagePickIndustry     Stage = "pick_industry"
	StageConfirmIndustry  Stage = "confirm_industry"
	StageAwaitingCustomer Stage = "awaiting_customer_name"
	StageChat             Stage = "chat"
	StageDone             Stage = "done"
)

type Field string

const (
	FieldCompanyName       Field = "company_name"
	FieldCompanyBackground Field = "company_background"
	FieldIndustryName      Field = "industry_name"
	FieldCustomerName      Field = "customer_name"
)

// FieldOrder is the priority in which missing fields are asked for.
var FieldOrder = []Field{
	FieldCompanyName,
	FieldCompanyBackground,
	FieldIndustryName,
	FieldCustomerName,
}

func (f Field) DisplayName() string {
	switch f {
	case FieldCompanyName:
		return "Company name"
	case FieldCompanyBackground:
		return "Company background"
	case FieldIndustryName:
		return "Industry"
	case FieldCustomerName:
		return "Customer name"
	default:
		return string(f)
	}
}

// Profile is the accumulated intake data. A field is either empty or holds a
// non-empty trimmed string.
type Profile struct {
	CompanyName       string `json:"company_name,omitempty" jsonschema:"description=The legal or trading name of the user's company"`
	CompanyBackground string `json:"company_background,omitempty" jsonschema:"description=A short free-text description of what the company does"`
	IndustryName      string `json:"industry_name,omitempty" jsonschema:"description=One industry label from the fixed label set"`
	CustomerName      string `json:"customer_name,omitempty" jsonschema:"description=The customer name the created instance should be registered under"`
}

func (p Profile) Get(f Field) string {
	switch f {
	case FieldCompanyName:
		return p.CompanyName
	case FieldCompanyBackground:
		return p.CompanyBackground
	case FieldIndustryName:
		return p.IndustryName
	case FieldCustomerName:
		return p.CustomerName
	default:
		return ""
	}
}

func (p *Profile) Set(f Field, value string) {
	value = strings.TrimSpace(value)
	switch f {
	case FieldCompanyName:
		p.CompanyName = value
	case FieldCompanyBackground:
		p.CompanyBackground = value
	case FieldIndustryName:
		p.IndustryName = value
	case FieldCustomerName:
		p.CustomerName = value
	}
}

// Missing returns the unset fields in asking order.
func (p Profile) Missing() []Field {
	var missing []Field
	for _, f := range FieldOrder {
		if p.Get(f) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

func (p Profile) Complete() bool {
	return len(p.Missing()) == 0
}

// Normalize trims every field so the non-empty-means-meaningful invariant holds.
func (p Profile) Normalize() Profile {
	return Profile{
		CompanyName:       strings.TrimSpace(p.CompanyName),
		CompanyBackground: strings.TrimSpace(p.CompanyBackground),
		IndustryName:      strings.TrimSpace(p.IndustryName),
		CustomerName:      strings.TrimSpace(p.CustomerName),
	}
}

// Merge folds a partial extraction into the profile. Only non-empty values in
// update overwrite; an empty extraction never clears earlier progress. The
// omitempty tags make the marshalled update a valid RFC 7396 merge patch.
func (p Profile) Merge(update Profile) (Profile, error) {
	update = update.Normalize()
	base, err := json.Marshal(p)
	if err != nil {
		return p, fmt.Errorf("marshal current profile: %w", err)
	}
	patch, err := json.Marshal(update)
	if err != nil {
		return p, fmt.Errorf("marshal profile update: %w", err)
	}
	merged, err := jsonpatch.MergePatch(base, patch)
	if err != nil {
		return p, fmt.Errorf("merge profile update: %w", err)
	}
	var out Profile
	if err := json.Unmarshal(merged, &out); err != nil {
		return p, fmt.Errorf("unmarshal merged profile: %w", err)
	}
	return out.Normalize(), nil
}

// JsonSchema renders the profile schema for interpretation prompts.
func JsonSchema() (string, error) {
	schema := jsonschema.Reflect(&Profile{})
	schema.Title = "Company intake"
	schema.Description = "Structured intake data collected over the conversation: company identity, background, industry and customer name."
	schemaBytes, err := json.Marshal(schema)
	if err != nil {
		return "", fmt.Errorf("marshal profile schema: %w", err)
	}
	return string(schemaBytes), nil
}
