package provider

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/tidwall/gjson"
)

// DefaultBaseURL is OpenRouter's OpenAI-compatible endpoint.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// temperature applied to every completion request.
const temperature = 0.7

// OpenRouter streams chat completions from OpenRouter through the
// official OpenAI SDK.
type OpenRouter struct {
	client openai.Client
}

// NewOpenRouter builds a client for baseURL (DefaultBaseURL when empty).
// appURL and appTitle, when set, become the HTTP-Referer and X-Title
// attribution headers OpenRouter recognizes.
func NewOpenRouter(apiKey, baseURL, appURL, appTitle string) *OpenRouter {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	}
	if appURL != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", appURL))
	}
	if appTitle != "" {
		opts = append(opts, option.WithHeader("X-Title", appTitle))
	}
	return &OpenRouter{client: openai.NewClient(opts...)}
}

func (o *OpenRouter) ChatStream(ctx context.Context, model string, messages []Message, onFragment func(Fragment)) error {
	stream := o.client.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    buildMessages(messages),
		Temperature: openai.Float(temperature),
	})
	defer stream.Close()

	for stream.Next() {
		for _, f := range chunkFragments(stream.Current().RawJSON()) {
			onFragment(f)
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("chat completion stream: %w", err)
	}
	return nil
}

func buildMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

// chunkFragments extracts the reasoning and content deltas from one raw
// streamed chunk. OpenRouter puts reasoning text in a delta field the SDK
// has no typed accessor for, so both deltas are read from the raw JSON.
// A chunk usually carries one or the other, but the contract does not
// assume exclusivity: when both are present each becomes a fragment,
// reasoning first.
func chunkFragments(raw string) []Fragment {
	delta := gjson.Get(raw, "choices.0.delta")
	if !delta.Exists() {
		return nil
	}
	var frags []Fragment
	if r := delta.Get("reasoning").String(); r != "" {
		frags = append(frags, Fragment{Kind: KindReasoning, Text: r})
	}
	if c := delta.Get("content").String(); c != "" {
		frags = append(frags, Fragment{Kind: KindAnswer, Text: c})
	}
	return frags
}
