package generation

import "github.com/google/generative-ai-go/genai"

// Response schemas sent with structured-output requests.

var stringListSchema = &genai.Schema{
	Type:  genai.TypeArray,
	Items: &genai.Schema{Type: genai.TypeString},
}

var experienceEntrySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"jobTitle":         {Type: genai.TypeString},
		"company":          {Type: genai.TypeString},
		"location":         {Type: genai.TypeString},
		"startDate":        {Type: genai.TypeString},
		"endDate":          {Type: genai.TypeString},
		"responsibilities": stringListSchema,
	},
	Required: []string{"jobTitle", "company", "location", "startDate", "endDate", "responsibilities"},
}

var educationEntrySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"degree":         {Type: genai.TypeString},
		"institution":    {Type: genai.TypeString},
		"location":       {Type: genai.TypeString},
		"graduationDate": {Type: genai.TypeString},
		"details":        stringListSchema,
	},
	Required: []string{"degree", "institution", "location", "graduationDate", "details"},
}
