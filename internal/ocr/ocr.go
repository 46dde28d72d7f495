// Package ocr turns job-description screenshots into text. Extraction runs
// through Google Vision document OCR; a quality gate rejects output too
// garbled or off-topic to feed the pipeline.
package ocr

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"

	"github.com/karan/inbox-agent/internal/llm"
	"github.com/karan/inbox-agent/internal/prompts"
)

// Extractor converts an image file into raw text.
type Extractor interface {
	ExtractText(ctx context.Context, imagePath string) (string, error)
	Close() error
}

// VisionExtractor implements Extractor using Google Cloud Vision document
// text detection.
type VisionExtractor struct {
	client  *vision.ImageAnnotatorClient
	timeout time.Duration
}

// NewVisionExtractor creates a Vision-backed extractor. credentialsPath may
// be empty when ambient credentials are configured.
func NewVisionExtractor(ctx context.Context, credentialsPath string) (*VisionExtractor, error) {
	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}
	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &VisionExtractor{client: client, timeout: 60 * time.Second}, nil
}

// ExtractText runs document text detection over the image at imagePath.
func (v *VisionExtractor) ExtractText(ctx context.Context, imagePath string) (string, error) {
	img, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image:    &visionpb.Image{Content: img},
			Features: []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}},
		}},
	}
	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return "", fmt.Errorf("vision annotate failed: %w", err)
	}
	if len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return "", nil
	}
	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return "", fmt.Errorf("vision annotate error: %s", r0.Error.Message)
	}
	if r0.FullTextAnnotation == nil {
		return "", nil
	}
	return strings.TrimSpace(r0.FullTextAnnotation.Text), nil
}

// Close releases the underlying Vision client.
func (v *VisionExtractor) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}

// Cleanup asks the LLM to repair OCR artifacts in raw text: misread
// characters, broken formatting, UI chrome from the screenshot.
func Cleanup(ctx context.Context, client llm.Client, rawText string) (string, llm.Usage, error) {
	system := prompts.MustLoad("inbox.json", "ocr_cleanup", 1)
	resp, err := client.Complete(ctx, system, rawText, false)
	if err != nil {
		return "", llm.Usage{}, fmt.Errorf("OCR cleanup call failed: %w", err)
	}
	return strings.TrimSpace(resp.Text), resp.Usage, nil
}
