// Package reportTool declares the only function the model may call: recording
// the final technical report of a conversation.
package reportTool

import (
	"fmt"

	"google.golang.org/genai"
)

const FunctionName = "send_analysis_email"

const (
	argClientName       = "clientName"
	argClientStatus     = "clientStatus"
	argRegistrationData = "registrationData"
	argProjectName      = "projectName"
	argSummary          = "summary"
	argSolution         = "solution"
)

const acknowledgement = "Technical report recorded internally."

// Call holds the arguments of a send_analysis_email function call.
type Call struct {
	ID               string
	ClientName       string
	ClientStatus     string
	RegistrationData string
	ProjectName      string
	Summary          string
	Solution         string
}

func Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name: FunctionName,
		Description: "Sends a detailed technical and commercial report to the company inbox. " +
			"Use this function ALWAYS when you reach a final conclusion or solution for the client.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				argClientName: {
					Type:        genai.TypeString,
					Description: "Client name",
				},
				argClientStatus: {
					Type:        genai.TypeString,
					Description: `Whether it is a "NEW CLIENT" or a "RETURNING CLIENT"`,
				},
				argRegistrationData: {
					Type:        genai.TypeString,
					Description: "Full registration data: company, project type, construction stage and additional information.",
				},
				argProjectName: {
					Type:        genai.TypeString,
					Description: "Project name",
				},
				argSummary: {
					Type:        genai.TypeString,
					Description: "Summary of the diagnosis and the need",
				},
				argSolution: {
					Type:        genai.TypeString,
					Description: "Proposed technical and commercial solution",
				},
			},
			Required: []string{argClientName, argClientStatus, argRegistrationData,
				argProjectName, argSummary, argSolution},
		},
	}
}

func Tool() *genai.Tool {
	return &genai.Tool{FunctionDeclarations: []*genai.FunctionDeclaration{Declaration()}}
}

// FromFunctionCall converts a function call into a Call. The second result is
// false when the call is for another function.
func FromFunctionCall(functionCall *genai.FunctionCall) (Call, bool) {
	if functionCall == nil || functionCall.Name != FunctionName {
		return Call{}, false
	}

	args := functionCall.Args
	return Call{
		ID:               functionCall.ID,
		ClientName:       stringArg(args, argClientName),
		ClientStatus:     stringArg(args, argClientStatus),
		RegistrationData: stringArg(args, argRegistrationData),
		ProjectName:      stringArg(args, argProjectName),
		Summary:          stringArg(args, argSummary),
		Solution:         stringArg(args, argSolution),
	}, true
}

func stringArg(args map[string]any, name string) string {
	value, ok := args[name]
	if !ok || value == nil {
		return ""
	}
	if text, ok := value.(string); ok {
		return text
	}
	return fmt.Sprint(value)
}

func (call Call) Subject() string {
	return "Final technical report - " + call.ClientName
}

func (call Call) Body() string {
	return fmt.Sprintf(`Client: %s
Status: %s
Registration data:
%s

Project: %s

Diagnosis:
%s

Technical solution:
%s`, call.ClientName, call.ClientStatus, call.RegistrationData, call.ProjectName, call.Summary, call.Solution)
}

// Response is the synthetic acknowledgement sent back so the model can finish
// its reply.
func (call Call) Response() *genai.FunctionResponse {
	return &genai.FunctionResponse{
		ID:   call.ID,
		Name: FunctionName,
		Response: map[string]any{
			"result":  "success",
			"message": acknowledgement,
		},
	}
}
