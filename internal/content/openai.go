package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/andrev/phraseflash/internal/logger"
	"github.com/andrev/phraseflash/internal/models"
)

// KeyFunc resolves the API key at call time so keys stored through the
// credential endpoints take effect without a restart.
type KeyFunc func() string

// OpenAIClient implements StoryGenerator, ClozeGenerator and
// SpeechSynthesizer on top of the OpenAI API.
type OpenAIClient struct {
	keyFn KeyFunc
	model string
	log   *logger.Logger
}

// NewOpenAIClient creates a client. keyFn may return "" to signal that no
// key is configured yet; every call then fails with ErrUnavailable.
func NewOpenAIClient(keyFn KeyFunc, model string) *OpenAIClient {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIClient{
		keyFn: keyFn,
		model: model,
		log:   logger.Default().WithPrefix("openai"),
	}
}

func (c *OpenAIClient) api() (*openai.Client, error) {
	key := c.keyFn()
	if key == "" {
		return nil, ErrUnavailable
	}
	return openai.NewClient(key), nil
}

func (c *OpenAIClient) GenerateNarrative(ctx context.Context, phrases []models.Phrase, lang models.LanguageContext) (*models.Narrative, error) {
	api, err := c.api()
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx).WithPrefix("openai")
	log.Debug("generating narrative: phrases=%d, target_lang=%s", len(phrases), lang.TargetLang)
	start := time.Now()

	var list strings.Builder
	ids := make([]int64, 0, len(phrases))
	for _, p := range phrases {
		fmt.Fprintf(&list, "- %q (%s)\n", p.Text, p.Translation)
		ids = append(ids, p.ID)
	}

	prompt := fmt.Sprintf(
		"Write a short story (3-5 sentences) in %s for a %s learner. "+
			"The story must naturally include every one of these phrases:\n%s"+
			"Return only the story text, no explanations.",
		lang.TargetLang, lang.Proficiency, list.String(),
	)

	resp, err := api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are a language tutor who writes short, level-appropriate review stories."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.8,
	})
	if err != nil {
		log.Error("narrative generation failed: %v", err)
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no completion choices returned")
	}

	log.Info("narrative generated in %v", time.Since(start))
	return &models.Narrative{
		Text:      strings.TrimSpace(resp.Choices[0].Message.Content),
		PhraseIDs: ids,
		Metadata:  map[string]string{"model": c.model},
	}, nil
}

func (c *OpenAIClient) GenerateDrills(ctx context.Context, phrases []models.Phrase, lang models.LanguageContext, count int) ([]models.DrillExercise, error) {
	api, err := c.api()
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx).WithPrefix("openai")
	log.Debug("generating drills: phrases=%d, count=%d", len(phrases), count)
	start := time.Now()

	if count <= 0 || count > len(phrases) {
		count = len(phrases)
	}

	var list strings.Builder
	for _, p := range phrases[:count] {
		fmt.Fprintf(&list, "- id=%d: %q (%s)\n", p.ID, p.Text, p.Translation)
	}

	prompt := fmt.Sprintf(
		"Create one fill-in-the-blank exercise per phrase for a %s learner of %s. "+
			"Phrases:\n%s"+
			"Respond with a JSON array only, one object per phrase: "+
			`{"phrase_id": <id>, "text": "<sentence with ___ gaps>", `+
			`"blanks": [{"position": <word index of gap>, "answer": "<answer>", "alternatives": ["..."]}], `+
			`"explanation": "<one-line hint>"}`,
		lang.Proficiency, lang.TargetLang, list.String(),
	)

	resp, err := api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are a language tutor who writes cloze exercises. Always answer with valid JSON."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.4,
	})
	if err != nil {
		log.Error("drill generation failed: %v", err)
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no completion choices returned")
	}

	drills, err := parseDrillJSON(resp.Choices[0].Message.Content)
	if err != nil {
		log.Error("failed to parse drill response: %v", err)
		return nil, err
	}

	log.Info("generated %d drills in %v", len(drills), time.Since(start))
	return drills, nil
}

func (c *OpenAIClient) Synthesize(ctx context.Context, text string, lang models.LanguageContext) ([]byte, error) {
	api, err := c.api()
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx).WithPrefix("openai")
	log.Debug("synthesizing speech: %d chars", len(text))

	resp, err := api.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: openai.TTSModel1,
		Input: text,
		Voice: openai.VoiceAlloy,
	})
	if err != nil {
		log.Error("speech synthesis failed: %v", err)
		return nil, err
	}
	defer resp.Close()

	return io.ReadAll(resp)
}

// parseDrillJSON decodes the model's drill response, tolerating markdown
// code fences around the JSON payload.
func parseDrillJSON(raw string) ([]models.DrillExercise, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	var drills []models.DrillExercise
	if err := json.Unmarshal([]byte(s), &drills); err != nil {
		return nil, fmt.Errorf("decode drill JSON: %w", err)
	}
	for i, d := range drills {
		if d.Text == "" || len(d.Blanks) == 0 {
			return nil, fmt.Errorf("drill %d missing text or blanks", i)
		}
	}
	return drills, nil
}
