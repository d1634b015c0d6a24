package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	adviceNoHabits = "Add some habits first, then I'll give you a strategy!"
	adviceFallback = "AI Coach is currently over-caffeinated. Try again in a minute."
)

type adviceProvider interface {
	generate(ctx context.Context, prompt string) (string, error)
}

type geminiProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

func newGeminiProvider(apiKey, model string) *geminiProvider {
	return &geminiProvider{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: "https://generativelanguage.googleapis.com",
		apiKey:  apiKey,
		model:   model,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

func (p *geminiProvider) generate(ctx context.Context, prompt string) (string, error) {
	body := struct {
		Contents []geminiContent `json:"contents"`
	}{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
	}
	data, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", p.baseURL, p.model, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("advice upstream returned status %d", resp.StatusCode)
	}

	var result struct {
		Candidates []struct {
			Content geminiContent `json:"content"`
		} `json:"candidates"`
	}
	err = json.NewDecoder(resp.Body).Decode(&result)
	if err != nil {
		return "", err
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("advice upstream returned no candidates")
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}

func (app *application) adviceHandler(w http.ResponseWriter, r *http.Request) {
	u := getUserFromRequest(r)
	habits, err := app.storage.getHabits(u.ID)
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	if len(habits) == 0 {
		writeJSON(w, http.StatusOK, map[string]string{"advice": adviceNoHabits})
		return
	}

	items := make([]string, 0, len(habits))
	for _, h := range habits {
		status := "Pending"
		if h.Completed {
			status = "Done"
		}
		items = append(items, fmt.Sprintf("%s (%s)", h.Name, status))
	}
	prompt := fmt.Sprintf(`User Habits today: %s.
Give the user one short, clever piece of advice or a 'life hack' to help with these specific habits.
Keep it to exactly 2 sentences. Be encouraging.`, strings.Join(items, ", "))

	advice, err := app.advice.generate(r.Context(), prompt)
	if err != nil {
		// Operators get the cause, callers get the canned line.
		log.Println(err)
		writeError(w, errors.New(adviceFallback), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"advice": advice})
}
