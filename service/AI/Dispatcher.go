package AI

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/sashabaranov/go-openai"
	"panote/database"
)

// ErrAllProvidersExhausted 所有候选模型都调用失败
var ErrAllProvidersExhausted = errors.New("所有候选模型均调用失败")

// 候选模型列表，按优先级从高到低，逐个尝试
// 2.0 限流或不可用时回退到 1.5
var chatModels = []string{
	"gemini-2.0-flash",
	"gemini-2.0-flash-exp",
	"gemini-1.5-flash",
	"gemini-1.5-pro",
	"gemini-flash-latest",
}

var visionModels = []string{
	"gemini-2.0-flash",
	"gemini-flash-latest",
	"gemini-pro-latest",
}

// chatSystemInstruction 限制输出为纯文本段落，不带Markdown标记
const chatSystemInstruction = "Respond in plain text only. Do not use Markdown formatting " +
	"(no bold **, no italics *, no headers #, no bullet points). " +
	"Use standard spacing and paragraphs for structure."

// visionInstruction 固定的图片文字提取指令
const visionInstruction = "Extract all text from this image. Return the content as natural, " +
	"continuous paragraphs. Fix any broken line breaks where a sentence is split across lines. " +
	"Do not return markdown tables or headers. Just return the clean, readable text."

// DispatcherInterface AI调用分发器接口
// 每次请求都从最优先的模型重新开始，单个模型只尝试一次，不做重试退避，
// 也不跨请求记忆哪个模型可用
type DispatcherInterface interface {
	ChatCompletion(ctx context.Context, turns []database.ChatTurn) (string, error)
	ExtractTextFromImage(ctx context.Context, imageBase64, mimeType string) (string, error)
}

var GlobalDispatcher DispatcherInterface

type dispatcher struct {
	client *openai.Client
}

// NewDispatcher 创建AI分发器
func NewDispatcher(client *openai.Client) (DispatcherInterface, error) {
	if client == nil {
		return nil, errors.New("AI客户端不能为空")
	}
	service := &dispatcher{client: client}
	GlobalDispatcher = service
	return service, nil
}

// NewClient 根据配置创建OpenAI兼容客户端
func NewClient(apiKey, baseURL string) *openai.Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(config)
}

// ChatCompletion 生成聊天回复，最后一轮视为新提问
func (d *dispatcher) ChatCompletion(ctx context.Context, turns []database.ChatTurn) (string, error) {
	if len(turns) == 0 {
		return "", errors.New("对话历史不能为空")
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(turns)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: chatSystemInstruction,
	})
	for _, turn := range turns {
		role := openai.ChatMessageRoleUser
		if turn.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: turn.Content,
		})
	}

	return d.tryCandidates(ctx, chatModels, messages)
}

// ExtractTextFromImage 从图片中提取文字
func (d *dispatcher) ExtractTextFromImage(ctx context.Context, imageBase64, mimeType string) (string, error) {
	if imageBase64 == "" || mimeType == "" {
		return "", errors.New("图片内容和MIME类型不能为空")
	}

	messages := []openai.ChatCompletionMessage{
		{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{
					Type: openai.ChatMessagePartTypeText,
					Text: visionInstruction,
				},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL: fmt.Sprintf("data:%s;base64,%s", mimeType, imageBase64),
					},
				},
			},
		},
	}

	return d.tryCandidates(ctx, visionModels, messages)
}

// tryCandidates 按顺序尝试候选模型，第一个成功的即返回
// 单个模型的失败只记日志，不向调用方暴露
func (d *dispatcher) tryCandidates(ctx context.Context, models []string, messages []openai.ChatCompletionMessage) (string, error) {
	var lastErr error
	for _, model := range models {
		resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    model,
			Messages: messages,
		})
		if err != nil {
			log.Printf("模型 %s 调用失败: %v", model, err)
			lastErr = err
			continue
		}
		if len(resp.Choices) == 0 {
			log.Printf("模型 %s 返回空结果", model)
			lastErr = fmt.Errorf("模型 %s 返回空结果", model)
			continue
		}
		return resp.Choices[0].Message.Content, nil
	}

	if lastErr == nil {
		lastErr = errors.New("没有可用的候选模型")
	}
	return "", fmt.Errorf("%w: %v", ErrAllProvidersExhausted, lastErr)
}
