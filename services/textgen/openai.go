package textgensvc

import (
	"context"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"

	"github.com/matludke/tempocerto/core"
)

type openAIService struct {
	client *openai.Client
	model  string
	logger core.Logger
}

var _ core.TextGenerator = (*openAIService)(nil)

func NewOpenAIService(logger core.Logger) core.TextGenerator {
	return &openAIService{
		client: openai.NewClient(core.Conf.OpenAIApiKey),
		model:  openai.GPT3Dot5Turbo,
		logger: logger,
	}
}

func (svc *openAIService) Generate(ctx context.Context, prompt string) (string, error) {
	res, err := svc.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: svc.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "creating chat completion")
	}
	if len(res.Choices) == 0 {
		return "", errors.New("no completion returned")
	}
	return res.Choices[0].Message.Content, nil
}
