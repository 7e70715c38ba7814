package server

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
)

const composerSystemPrompt = "You are a helpful assistant."

const composerUserPrompt = `Generate a %[1]s app for the following idea:
%[2]s

Constraints:
- Put the entire application in a single file named app.py.
- Reply with exactly one fenced code block tagged %[3]s containing the full source.
- The app must read its listen port from the PORT environment variable.
- Only import packages that are installable from PyPI.`

// Composer turns a free-text idea into application source by way of one chat
// completion, then pulls the code out of the reply. One request per user
// action, no retries.
type Composer struct {
	model  model.BaseChatModel
	logger *zap.SugaredLogger
}

func NewComposer(ctx context.Context, config Config, logger *zap.SugaredLogger) (*Composer, error) {
	chatModelConfig := &openai.ChatModelConfig{
		APIKey: config.OpenAIAPIKey,
		Model:  config.OpenAIModel,
	}
	if config.OpenAIBaseURL != "" {
		chatModelConfig.BaseURL = config.OpenAIBaseURL
	}

	chatModel, err := openai.NewChatModel(ctx, chatModelConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %v", err)
	}

	return &Composer{model: chatModel, logger: logger}, nil
}

func (c *Composer) Generate(ctx context.Context, idea string, kind Kind) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(composerSystemPrompt),
		schema.UserMessage(fmt.Sprintf(composerUserPrompt, kind.Name, idea, kind.FenceTag)),
	}

	reply, err := c.model.Generate(ctx, messages)
	if err != nil {
		return "", wrapErr(ErrKindGeneration, "chat completion", err)
	}

	code, err := ExtractFencedBlock(reply.Content, kind.FenceTag)
	if err != nil {
		return "", err
	}

	c.logger.Infow("code generated", "kind", kind.Name, "bytes", len(code))

	return code, nil
}

// ExtractFencedBlock returns the interior of the first fenced block tagged
// with tag, byte for byte. A reply without one is a generation failure, not
// an empty result.
func ExtractFencedBlock(text, tag string) (string, error) {
	pattern := regexp.MustCompile("(?s)```" + regexp.QuoteMeta(tag) + "\n(.*?)\n```")

	match := pattern.FindStringSubmatch(strings.TrimSpace(text))
	if match == nil {
		return "", wrapErr(ErrKindGeneration, "extract code block", fmt.Errorf("reply contains no ```%s``` block", tag))
	}

	return match[1], nil
}
