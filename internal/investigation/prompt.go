package investigation

import (
	"strings"
	"text/template"
	"time"
)

// DefaultSystemPrompt frames the model as an investigator and lists the expected workflow.
const DefaultSystemPrompt = `You are an expert fraud investigation agent for a financial institution.

Your role is to:
1. Investigate suspicious transactions systematically
2. Gather evidence from multiple data sources using available tools
3. Cross-reference information to identify fraud patterns
4. Generate comprehensive investigation briefs
5. Provide clear recommendations with confidence scores

Investigation guidelines:
- Always start by examining the transaction details
- Check the customer's KYC profile and risk level
- Look for similar past cases to learn from precedents
- Search for matching fraud patterns
- Review security logs (SIEM) for suspicious activity
- Cross-reference findings across multiple sources
- Be thorough but efficient: aim for 3-5 tool calls per investigation
- Do not call the same tool repeatedly with similar inputs

Recommendation options:
- ESCALATE: strong evidence of fraud, requires immediate action
- VERIFY: suspicious but needs human verification
- MONITOR: minor red flags, continue monitoring
- DISMISS: likely legitimate, low fraud risk

Be professional, objective, and always explain your reasoning.`

// VerdictBegin and VerdictEnd delimit the machine-readable trailer the model is asked to end with.
const (
	VerdictBegin = "BEGIN VERDICT"
	VerdictEnd   = "END VERDICT"
)

var promptTemplate = template.Must(template.New("investigation").Parse(`Investigate this suspicious transaction:

Transaction ID: {{.TransactionID}}
Alert Reason: {{.Description}}
Initial Risk Score: {{printf "%.2f" .RiskScore}}
Investigation Date: {{.Date}}

Please conduct a thorough fraud investigation using the available tools.

After gathering sufficient evidence, provide your investigation brief in this format:

INVESTIGATION BRIEF
==================
Case ID: {{.TransactionID}}
Investigation Date: {{.Date}}

SUMMARY:
[One paragraph summary of what you found]

EVIDENCE:
1. [Evidence point 1]
2. [Evidence point 2]
...

FRAUD INDICATORS:
- [Specific red flags identified]

SIMILAR CASES:
[Brief mention of any similar past cases]

CONFIDENCE ASSESSMENT:
Score: [0.0-1.0]
Reasoning: [Why this confidence level]

RECOMMENDATION: [ESCALATE | VERIFY | MONITOR | DISMISS]
Reasoning: [Why this action is appropriate]

Finish with exactly this block, filled in, as the last lines of your answer:

{{.Begin}}
RECOMMENDATION: <one of ESCALATE, VERIFY, MONITOR, DISMISS>
CONFIDENCE: <decimal between 0.0 and 1.0>
{{.End}}

Begin your investigation now.`))

type promptData struct {
	Alert
	Date  string
	Begin string
	End   string
}

// BuildPrompt renders the opening user turn for an alert.
func BuildPrompt(a Alert, now time.Time) string {
	var b strings.Builder
	// The template is fixed and the data is plain values; execution cannot fail.
	_ = promptTemplate.Execute(&b, promptData{
		Alert: a,
		Date:  now.Format("2006-01-02 15:04"),
		Begin: VerdictBegin,
		End:   VerdictEnd,
	})
	return b.String()
}
