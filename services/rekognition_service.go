package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/heirclark17/HeirclarkInstacartBackend-sub003/models"
	"github.com/heirclark17/HeirclarkInstacartBackend-sub003/utils"
)

// RekognitionService is the alternate vision capability provider, backed by
// AWS Rekognition label detection. It reports no portion information, so
// portionNotes stays at the default and the macro stage works from labels
// alone.
type RekognitionService struct {
	client *rekognition.Client
}

// Labels that name the scene rather than a food; they carry no signal for
// the macro stage.
var genericLabels = map[string]struct{}{
	"food": {}, "meal": {}, "dish": {}, "plate": {}, "cutlery": {}, "table": {}, "lunch": {}, "dinner": {},
}

func NewRekognitionService(ctx context.Context, region string) (*RekognitionService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &RekognitionService{client: rekognition.NewFromConfig(cfg)}, nil
}

// DescribeMeal maps detected labels onto the canonical vision shape:
// label names become identifiedFoods and the top label's detection
// confidence becomes clarity.
func (r *RekognitionService) DescribeMeal(ctx context.Context, imageJPEG []byte) (models.VisionResult, error) {
	out, err := r.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: imageJPEG},
		MaxLabels:     aws.Int32(10),
		MinConfidence: aws.Float32(55),
	})
	if err != nil {
		return models.VisionResult{}, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	result := models.VisionResult{
		IdentifiedFoods: []string{},
		PortionNotes:    utils.DefaultPortionNotes,
	}
	for _, l := range out.Labels {
		if l.Name == nil {
			continue
		}
		if l.Confidence != nil {
			if c := int(math.Round(float64(*l.Confidence))); c > result.Clarity {
				result.Clarity = c
			}
		}
		if _, generic := genericLabels[strings.ToLower(*l.Name)]; generic {
			continue
		}
		result.IdentifiedFoods = append(result.IdentifiedFoods, *l.Name)
	}
	if result.Clarity > 100 {
		result.Clarity = 100
	}
	return result, nil
}
