package pipeline

import (
	"bytes"
	"fmt"
	"text/template"
)

var identifyTemplate = template.Must(template.New("identify").Parse(`You will be provided with customer service queries about financial assistance.
The customer service query will be enclosed in the pair of {{.Delimiter}}.

Decide if the query is relevant to any specific financial schemes in the JSON object below,
where each key is a ` + "`category`" + ` and the value is a list of ` + "`financial_scheme`" + ` names.

If there are any relevant scheme(s) found, output the pair(s) of a) ` + "`financial_scheme`" + ` and
b) the associated ` + "`category`" + ` into a JSON list of objects, where each item in the list is a
relevant scheme and each scheme is an object that contains exactly two keys:
1) category
2) financial_scheme

Only use category and scheme names exactly as they appear below.

{{.Categories}}

If no relevant schemes are found, output an empty list: []

Ensure your response contains only the list of objects or an empty list,
without any enclosing tags, code fences or delimiters.`))

var generateTemplate = template.Must(template.New("generate").Parse(`Follow these steps to answer the customer queries.
The customer query will be delimited with a pair {{.Delimiter}}.

Step 1:{{.Delimiter}} If the user is asking about financial aid, identify the relevant scheme(s)
from the following list. All available schemes are shown in the data below:
{{.Details}}

Step 2:{{.Delimiter}} Use the information about the scheme to generate the answer for the customer's query.
You must only rely on the facts or information in the scheme information.
If the list above is empty, tell the customer that no relevant scheme was found for their
question and suggest they contact the financial aid office.
Your response should be as detailed as possible and include information that is useful
for the customer to understand the scheme.

Step 3:{{.Delimiter}} Answer the customer in a friendly tone.
Make sure the statements are factually accurate.
Your response should be comprehensive and informative to help the customer make their decision.

Use the following format:
Step 1:{{.Delimiter}} <step 1 reasoning>
Step 2:{{.Delimiter}} <step 2 reasoning>
Step 3:{{.Delimiter}} <step 3 response to customer>

Make sure to include {{.Delimiter}} to separate every step.`))

type identifyData struct {
	Delimiter  string
	Categories string
}

type generateData struct {
	Delimiter string
	Details   string
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
