package whisperx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
)

// Service runs WhisperX through uvx and reads back its JSON output.
type Service struct {
	cfg           Config
	commandRunner func(ctx context.Context, diag io.Writer, name string, args ...string) error
}

// NewService creates a WhisperX service with the given configuration.
func NewService(cfg Config) *Service {
	return &Service{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, diag io.Writer, name string, args ...string) error) {
	s.commandRunner = runner
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	if s.cfg.Model != "" {
		return s.cfg.Model
	}
	return DefaultModel
}

// Available reports whether uvx can be found on PATH.
func (s *Service) Available() error {
	if s.commandRunner != nil {
		return nil
	}
	if _, err := exec.LookPath(UVXCommand); err != nil {
		return fmt.Errorf("%s not found on PATH: %w", UVXCommand, err)
	}
	return nil
}

func (s *Service) run(ctx context.Context, diag io.Writer, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, diag, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	// Torch 2.6 changed torch.load to weights_only=true, which breaks the
	// pyannote checkpoints WhisperX loads.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}
	cmd.Stdout = diag
	cmd.Stderr = diag
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Transcribe runs WhisperX on source, writing its intermediate files to
// workDir, and returns the transcript as paragraphs of plain text.
func (s *Service) Transcribe(ctx context.Context, source, workDir string, diag io.Writer) (string, error) {
	if source == "" {
		return "", fmt.Errorf("whisperx: source path required")
	}
	if diag == nil {
		diag = io.Discard
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return "", fmt.Errorf("whisperx: ensure work dir: %w", err)
	}
	if err := s.run(ctx, diag, UVXCommand, s.buildArgs(source, workDir)...); err != nil {
		return "", fmt.Errorf("whisperx: %w", err)
	}
	baseName := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	segments, err := LoadSegments(filepath.Join(workDir, baseName+".json"))
	if err != nil {
		return "", fmt.Errorf("whisperx: %w", err)
	}
	text := Paragraphs(segments)
	if text == "" {
		return "", fmt.Errorf("whisperx: no speech recognised in %s", filepath.Base(source))
	}
	return text, nil
}

func (s *Service) buildArgs(source, outputDir string) []string {
	args := make([]string, 0, 24)
	if s.cfg.CUDAEnabled {
		args = append(args, "--index-url", CUDAIndexURL, "--extra-index-url", PypiIndexURL)
	} else {
		args = append(args, "--index-url", PypiIndexURL)
	}
	args = append(args,
		"whisperx",
		source,
		"--model", s.Model(),
		"--output_dir", outputDir,
		"--output_format", "json",
		"--batch_size", BatchSize,
		"--beam_size", BeamSize,
		"--no_align",
	)
	if lang := LanguageCode(s.cfg.Language); lang != "" {
		args = append(args, "--language", lang)
	}
	if s.cfg.CUDAEnabled {
		args = append(args, "--device", CUDADevice)
	} else {
		args = append(args, "--device", CPUDevice, "--compute_type", CPUComputeType)
	}
	return args
}

// LanguageCode maps BCP 47 tags such as "fr-FR" onto the two-letter code
// WhisperX expects.
func LanguageCode(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	tag, err := language.Parse(value)
	if err != nil {
		return ""
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return ""
	}
	return base.String()
}

// Segment represents a transcribed segment from WhisperX JSON output.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type payload struct {
	Segments []Segment `json:"segments"`
}

// LoadSegments loads segments from a WhisperX JSON file.
func LoadSegments(jsonPath string) ([]Segment, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse whisperx json: %w", err)
	}
	return p.Segments, nil
}

// Paragraphs joins segment text, starting a new paragraph whenever the
// speaker pauses for at least ParagraphGapSeconds.
func Paragraphs(segments []Segment) string {
	var paragraphs []string
	var current []string
	lastEnd := -1.0
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		if len(current) > 0 && lastEnd >= 0 && seg.Start-lastEnd >= ParagraphGapSeconds {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = nil
		}
		current = append(current, text)
		lastEnd = seg.End
	}
	if len(current) > 0 {
		paragraphs = append(paragraphs, strings.Join(current, " "))
	}
	return strings.Join(paragraphs, "\n\n")
}
