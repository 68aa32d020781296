package ui

import (
	"fmt"

	"physicstutor/internal/chat"
	"physicstutor/internal/config"
)

type TextControl struct {
	Label   string `json:"label"`
	Default string `json:"default"`
}

type IntControl struct {
	Label   string `json:"label"`
	Min     int    `json:"min"`
	Max     int    `json:"max"`
	Step    int    `json:"step"`
	Default int    `json:"default"`
}

type FloatControl struct {
	Label   string  `json:"label"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
	Default float64 `json:"default"`
}

// Controls описывает четыре элемента настройки рядом с полем ввода чата.
type Controls struct {
	SystemMessage TextControl  `json:"system_message"`
	MaxTokens     IntControl   `json:"max_tokens"`
	Temperature   FloatControl `json:"temperature"`
	TopP          FloatControl `json:"top_p"`
}

func DefaultControls(systemPrompt string) Controls {
	if systemPrompt == "" {
		systemPrompt = chat.DefaultSystemPrompt
	}
	return Controls{
		SystemMessage: TextControl{Label: "System message", Default: systemPrompt},
		MaxTokens:     IntControl{Label: "Max new tokens", Min: 1, Max: 2048, Step: 1, Default: 512},
		Temperature:   FloatControl{Label: "Temperature", Min: 0.1, Max: 4.0, Step: 0.1, Default: 0.5},
		TopP:          FloatControl{Label: "Top-p (nucleus sampling)", Min: 0.1, Max: 1.0, Step: 0.05, Default: 0.9},
	}
}

// WithOverrides применяет ненулевые значения из конфигурации. Диапазон,
// ставший перевёрнутым после слияния со встроенными границами, отклоняется.
func (c Controls) WithOverrides(cfg config.ControlsConfig) (Controls, error) {
	if cfg.MaxTokens.Min > 0 {
		c.MaxTokens.Min = cfg.MaxTokens.Min
	}
	if cfg.MaxTokens.Max > 0 {
		c.MaxTokens.Max = cfg.MaxTokens.Max
	}
	if cfg.MaxTokens.Default > 0 {
		c.MaxTokens.Default = cfg.MaxTokens.Default
	}
	if c.MaxTokens.Min > c.MaxTokens.Max {
		return Controls{}, fmt.Errorf("%w: max_tokens %d..%d", config.ErrInvalidRange, c.MaxTokens.Min, c.MaxTokens.Max)
	}
	c.MaxTokens.Default = clampInt(c.MaxTokens.Default, c.MaxTokens.Min, c.MaxTokens.Max)

	var err error
	if c.Temperature, err = overrideFloat("temperature", c.Temperature, cfg.Temperature); err != nil {
		return Controls{}, err
	}
	if c.TopP, err = overrideFloat("top_p", c.TopP, cfg.TopP); err != nil {
		return Controls{}, err
	}
	return c, nil
}

func overrideFloat(name string, c FloatControl, r config.FloatRange) (FloatControl, error) {
	if r.Min > 0 {
		c.Min = r.Min
	}
	if r.Max > 0 {
		c.Max = r.Max
	}
	if r.Step > 0 {
		c.Step = r.Step
	}
	if r.Default > 0 {
		c.Default = r.Default
	}
	if c.Min > c.Max {
		return FloatControl{}, fmt.Errorf("%w: %s %v..%v", config.ErrInvalidRange, name, c.Min, c.Max)
	}
	c.Default = clampFloat(c.Default, c.Min, c.Max)
	return c, nil
}

// Apply превращает значения из формы в параметры генерации:
// отсутствующие поля получают значения по умолчанию, числа зажимаются
// в диапазон слайдера. System message передаётся как есть.
func (c Controls) Apply(req ChatRequest) chat.Params {
	params := chat.Params{
		SystemMessage: req.SystemMessage,
		MaxTokens:     c.MaxTokens.Default,
		Temperature:   c.Temperature.Default,
		TopP:          c.TopP.Default,
	}
	if req.MaxTokens != nil {
		params.MaxTokens = clampInt(*req.MaxTokens, c.MaxTokens.Min, c.MaxTokens.Max)
	}
	if req.Temperature != nil {
		params.Temperature = clampFloat(*req.Temperature, c.Temperature.Min, c.Temperature.Max)
	}
	if req.TopP != nil {
		params.TopP = clampFloat(*req.TopP, c.TopP.Min, c.TopP.Max)
	}
	return params
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
