package clients

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/maastricht-university/lesson-assessor/transcript"
	"github.com/sirupsen/logrus"
)

const DefaultAssemblyAIURL = "https://api.assemblyai.com"

// Transcriber turns one audio file into diarized utterances.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]transcript.Utterance, error)
}

type AssemblyAIOptions struct {
	BaseURL          string
	APIKey           string
	SpeakersExpected int
	PollInterval     time.Duration
}

// AssemblyAI implements Transcriber over the AssemblyAI v2 REST API:
// upload the file, submit a job with speaker labels, then poll until it settles.
type AssemblyAI struct {
	http *HTTP
	opts AssemblyAIOptions
	log  logrus.FieldLogger
}

func NewAssemblyAI(h *HTTP, opts AssemblyAIOptions, log logrus.FieldLogger) *AssemblyAI {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultAssemblyAIURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.PollInterval <= 0 {
		opts.PollInterval = 3 * time.Second
	}
	if opts.SpeakersExpected <= 0 {
		opts.SpeakersExpected = 3
	}
	return &AssemblyAI{http: h, opts: opts, log: log}
}

type aaiUploadResp struct {
	UploadURL string `json:"upload_url"`
}

type aaiSubmitReq struct {
	AudioURL         string `json:"audio_url"`
	SpeakerLabels    bool   `json:"speaker_labels"`
	SpeakersExpected int    `json:"speakers_expected,omitempty"`
}

type aaiUtterance struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	Start   int64  `json:"start"`
	End     int64  `json:"end"`
}

type aaiTranscript struct {
	ID         string         `json:"id"`
	Status     string         `json:"status"`
	Error      string         `json:"error"`
	Utterances []aaiUtterance `json:"utterances"`
}

// ErrTranscriptFailed is returned when the service reports status "error".
var ErrTranscriptFailed = errors.New("transcription failed")

func (a *AssemblyAI) header() http.Header {
	h := http.Header{}
	h.Set("Authorization", a.opts.APIKey)
	return h
}

func (a *AssemblyAI) Transcribe(ctx context.Context, audioPath string) ([]transcript.Utterance, error) {
	uploadURL, err := a.upload(ctx, audioPath)
	if err != nil {
		return nil, err
	}

	var job aaiTranscript
	req := aaiSubmitReq{AudioURL: uploadURL, SpeakerLabels: true, SpeakersExpected: a.opts.SpeakersExpected}
	if err := a.http.postJSON(ctx, a.opts.BaseURL+"/v2/transcript", "assemblyai submit", a.header(), req, &job); err != nil {
		return nil, err
	}
	a.log.WithField("job", job.ID).Debug("transcription submitted")

	ticker := time.NewTicker(a.opts.PollInterval)
	defer ticker.Stop()
	for {
		switch job.Status {
		case "completed":
			return toUtterances(job.Utterances), nil
		case "error":
			return nil, fmt.Errorf("%w: %s", ErrTranscriptFailed, job.Error)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
		if err := a.http.getJSON(ctx, a.opts.BaseURL+"/v2/transcript/"+job.ID, "assemblyai poll", a.header(), &job); err != nil {
			return nil, err
		}
	}
}

func (a *AssemblyAI) upload(ctx context.Context, audioPath string) (string, error) {
	fd, err := os.Open(audioPath)
	if err != nil {
		return "", err
	}
	defer fd.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.opts.BaseURL+"/v2/upload", fd)
	if err != nil {
		return "", err
	}
	req.Header = a.header()
	req.Header.Set("Content-Type", "application/octet-stream")

	var out aaiUploadResp
	if err := a.http.do(req, "assemblyai upload", &out); err != nil {
		return "", err
	}
	if out.UploadURL == "" {
		return "", errors.New("assemblyai upload: empty upload_url")
	}
	return out.UploadURL, nil
}

func toUtterances(in []aaiUtterance) []transcript.Utterance {
	out := make([]transcript.Utterance, 0, len(in))
	for i, u := range in {
		out = append(out, transcript.Utterance{
			Speaker: u.Speaker,
			Text:    strings.TrimSpace(u.Text),
			Order:   i,
			StartMs: u.Start,
			EndMs:   u.End,
		})
	}
	return out
}
