package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/skill-mapper/internal/matcher"
)

// Source is the channel an activity description arrived through.
type Source string

const (
	SourceImage Source = "image"
	SourceVoice Source = "voice"
	SourceText  Source = "text"
)

// ParseSource accepts image, voice or text in any case.
func ParseSource(s string) (Source, error) {
	switch src := Source(strings.ToLower(strings.TrimSpace(s))); src {
	case SourceImage, SourceVoice, SourceText:
		return src, nil
	default:
		return "", fmt.Errorf("unknown source %q (want image, voice or text)", s)
	}
}

// Media is an inline binary attachment such as a photo or a voice recording.
type Media struct {
	MIMEType string
	Data     []byte
}

// Input is what gets classified. Text is used for text and voice sources,
// Media for images.
type Input struct {
	Source Source
	Text   string
	Media  *Media
}

// Classification is the sanitized answer of a classifier. Skills holds one
// match per canonical taxonomy name, weak ones included; OriginalSkills keeps
// what the service returned.
type Classification struct {
	Summary        string
	Skills         []matcher.Result
	OriginalSkills []string
	Raw            string
}

type Classifier interface {
	Classify(ctx context.Context, in Input) (*Classification, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audio Media) (string, error)
}
