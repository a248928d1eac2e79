package services

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/heirclark17/HeirclarkInstacartBackend-sub003/models"
	"github.com/heirclark17/HeirclarkInstacartBackend-sub003/utils"
)

// VisionCapability describes a photo: any provider returning the canonical
// shape is interchangeable (Gemini and Rekognition both qualify).
type VisionCapability interface {
	DescribeMeal(ctx context.Context, imageJPEG []byte) (models.VisionResult, error)
}

// ReasoningCapability estimates macros from a one-line meal description.
type ReasoningCapability interface {
	EstimateMacros(ctx context.Context, description string) (models.MacroResult, error)
}

// EstimationOptions are the externally configured pipeline tunables. The
// auto-log threshold in particular must never be hardcoded near the gate.
type EstimationOptions struct {
	AutoLogThreshold int           // composite confidence >= threshold auto-logs
	UpstreamTimeout  time.Duration // per-request bound on provider calls
	MaxImageDim      int           // longest image side sent upstream
	JPEGQuality      int
}

// EstimationService runs the two-stage pipeline: (photo: vision -> macro)
// or (text: macro only), normalization included in the capability calls,
// then the confidence gate, then a conditional store append. Auto-log is
// the only write without an explicit caller action, so it is the most
// conservative path in the system.
type EstimationService struct {
	vision   VisionCapability
	reasoner ReasoningCapability
	store    MealStore
	opts     EstimationOptions
}

func NewEstimationService(vision VisionCapability, reasoner ReasoningCapability, store MealStore, opts EstimationOptions) *EstimationService {
	if opts.AutoLogThreshold <= 0 {
		opts.AutoLogThreshold = 60
	}
	if opts.UpstreamTimeout <= 0 {
		opts.UpstreamTimeout = 30 * time.Second
	}
	if opts.MaxImageDim <= 0 {
		opts.MaxImageDim = 1024
	}
	if opts.JPEGQuality <= 0 {
		opts.JPEGQuality = 80
	}
	return &EstimationService{vision: vision, reasoner: reasoner, store: store, opts: opts}
}

// Estimate is what both entry paths hand back to the caller. MealID is set
// only when the confidence gate auto-logged the record.
type Estimate struct {
	models.MacroResult
	Confidence int    `json:"confidence,omitempty"`
	AutoLogged bool   `json:"auto_logged"`
	MealID     string `json:"meal_id,omitempty"`
}

// EstimateFromText estimates macros for a free-text description. The text
// path never auto-logs: no vision-derived confidence exists for it, so
// persisting always takes an explicit append.
func (s *EstimationService) EstimateFromText(ctx context.Context, ownerID, text string) (*Estimate, error) {
	if ownerID == "" {
		return nil, ErrMissingOwner
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrInvalidInput
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.UpstreamTimeout)
	defer cancel()

	macros, err := s.reasoner.EstimateMacros(ctx, text)
	if err != nil {
		return nil, err
	}
	return &Estimate{MacroResult: macros, AutoLogged: false}, nil
}

// EstimateFromPhoto runs the full photo pipeline. When the composite
// confidence clears the threshold the estimate is appended to the owner's
// log in the same call; otherwise it is returned unpersisted and the client
// must confirm it via an explicit append.
func (s *EstimationService) EstimateFromPhoto(ctx context.Context, ownerID string, image []byte, label string) (*Estimate, error) {
	if ownerID == "" {
		return nil, ErrMissingOwner
	}
	if len(image) == 0 {
		return nil, ErrInvalidInput
	}

	prepared, err := utils.PrepareImage(image, s.opts.MaxImageDim, s.opts.JPEGQuality)
	if err != nil {
		return nil, ErrInvalidInput
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.UpstreamTimeout)
	defer cancel()

	vision, err := s.vision.DescribeMeal(ctx, prepared)
	if err != nil {
		return nil, err
	}

	macros, err := s.reasoner.EstimateMacros(ctx, utils.FormatDescription(vision))
	if err != nil {
		return nil, err
	}
	if len(macros.IdentifiedFoods) == 0 {
		macros.IdentifiedFoods = vision.IdentifiedFoods
	}

	confidence := CompositeConfidence(vision)
	est := &Estimate{
		MacroResult: macros,
		Confidence:  confidence,
		AutoLogged:  confidence >= s.opts.AutoLogThreshold,
	}
	if !est.AutoLogged {
		return est, nil
	}

	meal := buildEstimateMeal(est.MacroResult, label, models.SourcePhotoEstimate, confidence)
	stored, err := s.store.Append(ctx, ownerID, meal)
	if err != nil {
		// A failed append must not masquerade as a logged meal.
		utils.Log.WithField("owner", ownerID).Warnf("auto-log append failed: %v", err)
		return nil, err
	}
	est.MealID = stored.ID
	utils.Log.WithField("owner", ownerID).
		WithField("confidence", confidence).
		WithField("meal_id", stored.ID).
		Info("photo estimate auto-logged")
	return est, nil
}

// CompositeConfidence combines clarity with description completeness: the
// provider's clarity score, scaled down when it could not name a single
// food, clamped to [0,100].
func CompositeConfidence(v models.VisionResult) int {
	c := v.Clarity
	if len(v.IdentifiedFoods) == 0 {
		c = int(math.Round(float64(c) * 0.6))
	}
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}

// buildEstimateMeal turns a normalized estimate into a single-item meal
// record carrying its provenance.
func buildEstimateMeal(m models.MacroResult, label, source string, confidence int) models.Meal {
	if label == "" {
		label = m.MealName
	}
	return models.Meal{
		Label: label,
		Items: []models.NutritionItem{{
			Name:     m.MealName,
			Calories: m.Calories,
			Protein:  m.Protein,
			Carbs:    m.Carbs,
			Fat:      m.Fat,
		}},
		Source:          source,
		Confidence:      confidence,
		IdentifiedFoods: m.IdentifiedFoods,
		SuggestedSwaps:  m.SuggestedSwaps,
		Explanation:     m.Explanation,
	}
}
