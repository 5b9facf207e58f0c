package config

import "maps"

// AdminField describes one editable setting shown in the admin panel.
type AdminField struct {
	Key   string `koanf:"key" json:"key"`
	Label string `koanf:"label" json:"label"`
	// Type is text, textarea, bool, phone, email or url.
	Type  string `koanf:"type" json:"type"`
	Group string `koanf:"group" json:"group"`
}

// AdminConfig is the admin panel definition. It is fixed at startup and
// handed out by value; callers never share the underlying slices or maps.
type AdminConfig struct {
	SiteName string          `koanf:"site_name" json:"siteName"`
	Fields   []AdminField    `koanf:"fields" json:"fields"`
	Features map[string]bool `koanf:"features" json:"features"`
}

// Clone returns a deep copy.
func (a AdminConfig) Clone() AdminConfig {
	out := AdminConfig{SiteName: a.SiteName}
	if a.Fields != nil {
		out.Fields = append([]AdminField(nil), a.Fields...)
	}
	if a.Features != nil {
		out.Features = maps.Clone(a.Features)
	}
	return out
}

// FeatureEnabled reports whether a named feature toggle is on.
func (a AdminConfig) FeatureEnabled(name string) bool {
	return a.Features[name]
}

func (a AdminConfig) withDefaults() AdminConfig {
	out := a.Clone()
	if out.SiteName == "" {
		out.SiteName = "My Business"
	}
	if len(out.Fields) == 0 {
		out.Fields = defaultAdminFields()
	}
	if out.Features == nil {
		out.Features = map[string]bool{}
	}
	for name, on := range defaultFeatures() {
		if _, set := out.Features[name]; !set {
			out.Features[name] = on
		}
	}
	return out
}

func defaultAdminFields() []AdminField {
	return []AdminField{
		{Key: "company_name", Label: "Company name", Type: "text", Group: "general"},
		{Key: "hero_title", Label: "Hero title", Type: "text", Group: "general"},
		{Key: "hero_subtitle", Label: "Hero subtitle", Type: "textarea", Group: "general"},
		{Key: "phone", Label: "Phone", Type: "phone", Group: "contacts"},
		{Key: "email", Label: "Email", Type: "email", Group: "contacts"},
		{Key: "address", Label: "Address", Type: "textarea", Group: "contacts"},
		{Key: "telegram_chat_id", Label: "Telegram chat for leads", Type: "text", Group: "notifications"},
		{Key: "show_portfolio", Label: "Show portfolio", Type: "bool", Group: "sections"},
		{Key: "show_testimonials", Label: "Show testimonials", Type: "bool", Group: "sections"},
		{Key: "show_instructions", Label: "Show instructions overlay", Type: "bool", Group: "sections"},
	}
}

func defaultFeatures() map[string]bool {
	return map[string]bool{
		"portfolio":    true,
		"testimonials": true,
		"services":     true,
		"leads":        true,
		"media":        false,
	}
}
