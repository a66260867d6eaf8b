package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/pageza/nutriscan/backend/internal/models"
)

// LabelDetector is the subset of the Rekognition client the recognizer uses
type LabelDetector interface {
	DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

// labelKeywords maps lower-case Rekognition labels to catalog keys
var labelKeywords = map[string][]string{
	"pasta":      {"pasta_pomodoro", "carbonara"},
	"spaghetti":  {"carbonara", "pasta_pomodoro"},
	"noodle":     {"pasta_pomodoro"},
	"carbonara":  {"carbonara"},
	"tomato":     {"pasta_pomodoro"},
	"bacon":      {"carbonara"},
	"salad":      {"insalata_mista"},
	"lettuce":    {"insalata_mista"},
	"vegetable":  {"insalata_mista", "pollo_verdure"},
	"chicken":    {"pollo_verdure"},
	"poultry":    {"pollo_verdure"},
	"pizza":      {"pizza_margherita"},
	"mozzarella": {"pizza_margherita"},
}

// RekognitionRecognizer maps AWS Rekognition labels onto the reference catalog
type RekognitionRecognizer struct {
	client        LabelDetector
	maxLabels     int32
	minConfidence float32
}

// NewRekognitionRecognizer creates a recognizer backed by client
func NewRekognitionRecognizer(client LabelDetector) *RekognitionRecognizer {
	return &RekognitionRecognizer{
		client:        client,
		maxLabels:     10,
		minConfidence: 60,
	}
}

// NewRekognitionRecognizerFromConfig builds the Rekognition client from an AWS config
func NewRekognitionRecognizerFromConfig(cfg aws.Config) *RekognitionRecognizer {
	return NewRekognitionRecognizer(rekognition.NewFromConfig(cfg))
}

// Recognize detects labels in the image and ranks the matching catalog dishes
func (r *RekognitionRecognizer) Recognize(ctx context.Context, image string) ([]models.Candidate, error) {
	uri, err := ParseDataURI(image)
	if err != nil {
		return nil, err
	}

	out, err := r.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: uri.Data},
		MaxLabels:     aws.Int32(r.maxLabels),
		MinConfidence: aws.Float32(r.minConfidence),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to detect labels: %w", err)
	}

	candidates := candidatesFromLabels(out.Labels)
	log.Printf("[RekognitionRecognizer] %d labels matched %d catalog dishes", len(out.Labels), len(candidates))
	return candidates, nil
}

// candidatesFromLabels keeps the best confidence per catalog key, highest first
func candidatesFromLabels(labels []types.Label) []models.Candidate {
	best := make(map[string]float64)
	for _, l := range labels {
		if l.Name == nil || l.Confidence == nil {
			continue
		}
		name := strings.ToLower(*l.Name)
		conf := float64(*l.Confidence) / 100
		for keyword, keys := range labelKeywords {
			if !strings.Contains(name, keyword) {
				continue
			}
			// The first key of a keyword is the stronger guess
			for i, key := range keys {
				score := conf
				if i > 0 {
					score = conf * 0.75
				}
				if score > best[key] {
					best[key] = score
				}
			}
		}
	}

	candidates := make([]models.Candidate, 0, len(best))
	for key, conf := range best {
		c, err := NewCandidate(key, conf)
		if err != nil {
			continue
		}
		candidates = append(candidates, c)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		return candidates[i].Key < candidates[j].Key
	})
	return candidates
}
