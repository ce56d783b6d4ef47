package domain

import "strings"

// Option is a selectable value with its display label.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var CompanySizes = []Option{
	{Value: "small", Label: "Small (1-50 employees)"},
	{Value: "medium", Label: "Medium (51-500 employees)"},
	{Value: "large", Label: "Large (500+ employees)"},
}

var AICapabilities = []Option{
	{Value: "computer_vision", Label: "Computer vision"},
	{Value: "nlp", Label: "Natural language processing"},
	{Value: "speech", Label: "Speech recognition / synthesis"},
	{Value: "machine_learning", Label: "Machine learning"},
	{Value: "deep_learning", Label: "Deep learning"},
	{Value: "knowledge_graph", Label: "Knowledge graph"},
	{Value: "recommendation", Label: "Recommendation systems"},
	{Value: "intelligent_search", Label: "Intelligent search"},
	{Value: "data_mining", Label: "Data mining"},
	{Value: "reinforcement_learning", Label: "Reinforcement learning"},
	{Value: "edge_computing", Label: "Edge computing"},
	{Value: "ai_chip", Label: "AI chips"},
}

var Industries = []Option{
	{Value: "manufacturing", Label: "Manufacturing"},
	{Value: "finance", Label: "Financial services"},
	{Value: "healthcare", Label: "Healthcare"},
	{Value: "retail", Label: "Retail and e-commerce"},
	{Value: "logistics", Label: "Transport and logistics"},
	{Value: "education", Label: "Education and training"},
	{Value: "smart_city", Label: "Smart city"},
	{Value: "energy", Label: "Energy and power"},
	{Value: "agriculture", Label: "Agriculture"},
	{Value: "entertainment", Label: "Culture and entertainment"},
	{Value: "government", Label: "Government services"},
	{Value: "construction", Label: "Construction and real estate"},
	{Value: "telecom", Label: "Telecom operators"},
	{Value: "security", Label: "Security and surveillance"},
	{Value: "automotive", Label: "Automotive"},
}

var ExpertiseLevels = []string{"", "Junior", "Intermediate", "Senior", "Expert", "Industry leading"}

// OptionLabel returns the label for value, or value itself when unknown.
func OptionLabel(options []Option, value string) string {
	for _, o := range options {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

// OptionLabels joins the labels of values with ", ".
func OptionLabels(options []Option, values []string) string {
	labels := make([]string, len(values))
	for i, v := range values {
		labels[i] = OptionLabel(options, v)
	}
	return strings.Join(labels, ", ")
}

// HasOption reports whether value is one of options.
func HasOption(options []Option, value string) bool {
	for _, o := range options {
		if o.Value == value {
			return true
		}
	}
	return false
}
