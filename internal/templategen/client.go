package templategen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mkalens/liftlog/internal/plans"
	"github.com/mkalens/liftlog/internal/profiles"
	"github.com/mkalens/liftlog/internal/telemetry/tracing"
	"github.com/mkalens/liftlog/internal/workoutlog"

	log "github.com/sirupsen/logrus"
)

// ErrGeneration marks any failure to produce a usable weekly plan: a
// non-2xx response, a malformed payload, or empty model output. Callers
// must treat it as a hard failure and keep the previous plan.
var ErrGeneration = errors.New("plan generation failed")

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4.1"

	temperature = 0.7
)

const systemPrompt = `You are a smart fitness assistant. Generate a 1-week workout plan for a user based on their profile.

For each workout:
- Infer and label the muscle_group using one of these values only: "chest", "back", "legs", "arms", "shoulders", "core", "conditioning". Base this on the exercises included in that day only, not on the weekly split.
- The workout must include 3 sections: warmup, main, and cooldown, each as a separate array under the exercises key.

- Match the number of workouts to the user's selected training days. Use the user's preferred rest days to assign rest days first. If more rest days are needed, choose the remaining ones to balance the split. Fill all rest days with an entry for that day and an empty exercises object.

Cardio Logic:
- If cardio preference is "none", avoid any cardio-focused exercises.
- If "light", include light cardio warmups or short finishers.
- If "moderate", include dedicated cardio on 1-2 days.
- If "high", include daily conditioning segments or hybrid training styles.
- For time-based interval conditioning exercises, include: timed: true, sets, work (seconds), rest (seconds), and duration (total session time, like "6:00").

General Rules:
- Return all days in lowercase (e.g. "monday").
- Each exercise must include: name, sets, reps, timed (boolean), rest (int, in seconds), weighted (boolean), duration (string), cardio (boolean). If timed and interval-based, also include work (int, seconds).
- Tailor workouts to the user's experience and equipment. Use bodyweight for no-equipment. Use machines and free weights for gym access.

Return valid JSON in the structure:
{
  "split": "string",
  "workouts": [
    {
      "day": "monday",
      "type": "string",
      "muscle_group": "chest",
      "exercises": {
        "warmup": [ { "name": "...", "sets": 2, "reps": 15 } ],
        "main": [],
        "cooldown": []
      }
    }
  ]
}`

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type generatedWorkout struct {
	Day         string                      `json:"day"`
	Type        string                      `json:"type"`
	MuscleGroup string                      `json:"muscle_group"`
	Exercises   workoutlog.ExerciseSections `json:"exercises"`
}

type generatedPlan struct {
	Split    string             `json:"split"`
	Workouts []generatedWorkout `json:"workouts"`
}

// Client calls the OpenAI chat completions API to produce a weekly plan
// from a profile.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, model string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: httpClient,
	}
}

// GeneratePlan asks the model for a fresh weekly plan. Every failure mode
// comes back wrapped in ErrGeneration, never as a silently empty plan.
func (c *Client) GeneratePlan(ctx context.Context, profile profiles.Profile) (_ []plans.Template, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "templategen.generatePlan")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	reqBody, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt(profile)},
		},
		Temperature: temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %s", ErrGeneration, err)
	}

	req, err := http.NewRequestWithContext(
		ctx, "POST",
		c.baseURL+"/chat/completions",
		bytes.NewReader(reqBody),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrGeneration, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	log.Debugf("generating weekly plan, model %s, goal [%s]", c.model, profile.Goal)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: http client do: %s", ErrGeneration, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %s", ErrGeneration, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d: %s", ErrGeneration, resp.StatusCode, respBytes)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBytes, &chatResp); err != nil {
		return nil, fmt.Errorf("%w: unmarshal response: %s", ErrGeneration, err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", ErrGeneration)
	}

	plan, err := parsePlan(chatResp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	templates := make([]plans.Template, 0, len(plan.Workouts))
	for _, w := range plan.Workouts {
		t := plans.Template{
			DayOfWeek:   w.Day,
			WorkoutName: w.Type,
			MuscleGroup: w.MuscleGroup,
			Split:       plan.Split,
			Exercises:   w.Exercises,
		}
		t.Normalize()
		templates = append(templates, t)
	}

	log.Debugf("weekly plan generated: split [%s], %d workouts", plan.Split, len(templates))
	return templates, nil
}

// parsePlan decodes model output, tolerating the markdown code fences the
// model wraps JSON in every now and then.
func parsePlan(content string) (*generatedPlan, error) {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var plan generatedPlan
	if err := json.Unmarshal([]byte(cleaned), &plan); err != nil {
		return nil, fmt.Errorf("%w: unmarshal plan: %s", ErrGeneration, err)
	}
	if len(plan.Workouts) == 0 {
		return nil, fmt.Errorf("%w: plan has no workouts", ErrGeneration)
	}
	return &plan, nil
}

func userPrompt(profile profiles.Profile) string {
	var sb strings.Builder
	sb.WriteString("User Profile:\n")
	fmt.Fprintf(&sb, "- Name: %s\n", profile.Name)
	fmt.Fprintf(&sb, "- Goal: %s\n", profile.Goal)
	fmt.Fprintf(&sb, "- Experience: %s\n", profile.Experience)
	fmt.Fprintf(&sb, "- Days per Week: %d\n", profile.DaysPerWeek)
	fmt.Fprintf(&sb, "- Equipment: %s\n", profile.Equipment)
	fmt.Fprintf(&sb, "- Height (cm): %d\n", profile.HeightCm)
	fmt.Fprintf(&sb, "- Weight (kg): %.1f\n", profile.WeightKg)
	fmt.Fprintf(&sb, "- Units: %s\n", profile.UnitPreference)
	fmt.Fprintf(&sb, "- Cardio Preference: %s\n", profile.CardioPreference)
	fmt.Fprintf(&sb, "- Preferred Rest Days: %s\n", strings.Join(profile.PreferredRestDays, ", "))
	return sb.String()
}
