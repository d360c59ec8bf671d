package gradequiz

import (
	"context"
	"fmt"
	"log"

	openai "github.com/sashabaranov/go-openai"
)

// FetchTopics asks the model for topics in a subject at a grade level. The
// returned list does not include AllTopics; see TopicCatalog.
func (qm *QuestionMaker) FetchTopics(ctx context.Context, subject string, grade int) ([]string, error) {
	req := GenerationRequest{
		Subject: subject,
		Grade:   grade,
	}

	var args struct {
		Topics []string `json:"topics"`
	}
	err := qm.callTool(ctx, OpFetchTopics, req, buildTopicsPrompt(req), submitTopicsTool(), &args)
	if err != nil {
		return nil, err
	}
	if len(args.Topics) == 0 {
		return nil, providerError(OpFetchTopics, fmt.Errorf("no topics returned"))
	}

	log.Printf("Fetched %d topics for %s (grade %d)", len(args.Topics), subject, grade)
	return args.Topics, nil
}

func submitTopicsTool() *openai.FunctionDefinition {
	return &openai.FunctionDefinition{
		Name:        "submit_topics",
		Description: "Submit the suggested academic topics",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"topics": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
					},
					"description": "Specific academic topics for the subject and grade",
				},
			},
			"required": []string{"topics"},
		},
	}
}
