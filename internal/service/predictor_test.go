package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/heart-risk-predictor/internal/domain"
	"github.com/heart-risk-predictor/internal/metrics"
	"github.com/heart-risk-predictor/internal/model"
	"github.com/heart-risk-predictor/internal/preprocess"
)

const referenceCSV = `Age,Gender,Cholesterol,Blood Pressure,Heart Rate,Smoking,Alcohol Intake,Exercise Hours,Family History,Diabetes,Obesity,Stress Level,Blood Sugar,Exercise Induced Angina,Chest Pain Type,Heart Disease
40,Male,200,120,70,Never,None,2,No,No,No,4,100,No,Asymptomatic,0
60,Female,240,140,80,Current,Heavy,4,Yes,Yes,Yes,8,140,Yes,Typical Angina,1
`

// MockModel is a mock implementation of model.ProbabilisticModel
type MockModel struct {
	mock.Mock
}

func (m *MockModel) PredictProba(rows [][]float64) ([][]float64, error) {
	args := m.Called(rows)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float64), args.Error(1)
}

type explodingModel struct{}

func (explodingModel) PredictProba([][]float64) ([][]float64, error) {
	panic("index out of range")
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

func fittedPreprocessor(t *testing.T) *preprocess.Preprocessor {
	t.Helper()
	ds, err := preprocess.ReadReferenceDataset(strings.NewReader(referenceCSV))
	require.NoError(t, err)
	return preprocess.NewFromDataset(ds, testLogger())
}

func testConfig() domain.PredictorConfig {
	return domain.PredictorConfig{
		CacheSize: 0,
		Breaker:   domain.BreakerConfig{MaxFailures: 5, OpenTimeout: time.Minute},
	}
}

func newTestPredictor(t *testing.T, cfg domain.PredictorConfig) *Predictor {
	t.Helper()
	p, err := NewPredictor(cfg, fittedPreprocessor(t), testLogger(), WithMetrics(metrics.NewRecorder()))
	require.NoError(t, err)
	return p
}

// writeLogisticModel writes a model whose output depends only on intercept.
func writeLogisticModel(t *testing.T, dir, name string, intercept float64) string {
	t.Helper()
	coefficients := strings.TrimSuffix(strings.Repeat("0,", domain.FeatureCount), ",")
	body := fmt.Sprintf(`{"kind":"logistic_regression","features":["%s"],"coefficients":[%s],"intercept":%v}`,
		strings.Join(domain.FeatureOrder, `","`), coefficients, intercept)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestPredictor_NoModelUsesFallback(t *testing.T) {
	p := newTestPredictor(t, testConfig())
	assert.Equal(t, NoModel, p.State())

	t.Run("Low_Risk_Example", func(t *testing.T) {
		result := p.PredictRisk(lowRiskRecord())

		assert.Equal(t, 5.0, result.RiskPercentage)
		assert.Equal(t, domain.LowRisk, result.RiskCategory)
		assert.Equal(t, "#22c55e", result.Color)
		assert.Equal(t, domain.SourceFallback, result.Source)
		assert.Equal(t, domain.Disclaimer, result.Disclaimer)
		assert.NotContains(t, result.Recommendations, AdviceRegularCheckups)
		assert.NotContains(t, result.Recommendations, AdviceCardiacEval)
		assert.Equal(t, AdviceScreenings, result.Recommendations[len(result.Recommendations)-1])
	})

	t.Run("High_Risk_Example", func(t *testing.T) {
		result := p.PredictRisk(highRiskRecord())

		assert.Equal(t, 95.0, result.RiskPercentage)
		assert.Equal(t, domain.HighRisk, result.RiskCategory)
		assert.Contains(t, result.Recommendations, AdviceCardiacEval)
		assert.Contains(t, result.Recommendations, AdvicePreventiveMeds)
	})

	t.Run("Matches_Scorer", func(t *testing.T) {
		record := domain.PatientRecord{domain.AttrAge: 58, domain.AttrDiabetes: "Yes"}

		assert.Equal(t, NewFallbackScorer().Score(record), p.PredictRisk(record).RiskPercentage)
	})

	t.Run("Missing_Smoking_Equals_Never", func(t *testing.T) {
		without := lowRiskRecord()
		delete(without, domain.AttrSmoking)

		assert.Equal(t, p.PredictRisk(lowRiskRecord()), p.PredictRisk(without))
	})
}

func TestPredictor_LoadModel(t *testing.T) {
	dir := t.TempDir()
	p := newTestPredictor(t, testConfig())

	path := writeLogisticModel(t, dir, "ensemble_model.json", 2)
	require.NoError(t, p.LoadModel(path))
	assert.Equal(t, ModelLoaded, p.State())

	result := p.PredictRisk(lowRiskRecord())
	assert.Equal(t, 88.1, result.RiskPercentage)
	assert.Equal(t, domain.HighRisk, result.RiskCategory)
	assert.Equal(t, domain.SourceModel, result.Source)

	info := p.ModelInfo()
	assert.True(t, info.ModelLoaded)
	assert.Equal(t, model.KindLogisticRegression, info.ModelType)
	assert.Equal(t, path, info.ModelPath)
	assert.NotNil(t, info.LoadedAt)
	assert.Equal(t, "closed", info.BreakerState)
	assert.True(t, info.PreprocessorsReady)
	assert.Equal(t, domain.FeatureOrder, info.Features)

	t.Run("Unknown_Category_Does_Not_Fail", func(t *testing.T) {
		record := lowRiskRecord()
		record[domain.AttrGender] = "Other"

		assert.Equal(t, domain.SourceModel, p.PredictRisk(record).Source)
	})

	t.Run("Replacement_Model", func(t *testing.T) {
		replacement := writeLogisticModel(t, dir, "replacement.json", 0)
		require.NoError(t, p.LoadModel(replacement))

		result := p.PredictRisk(lowRiskRecord())
		assert.Equal(t, 50.0, result.RiskPercentage)
		assert.Equal(t, domain.ModerateRisk, result.RiskCategory)
		assert.Equal(t, replacement, p.ModelInfo().ModelPath)
	})

	t.Run("Failed_Load_Keeps_Previous_Model", func(t *testing.T) {
		before := p.ModelInfo().ModelPath
		corrupt := filepath.Join(dir, "corrupt.json")
		require.NoError(t, os.WriteFile(corrupt, []byte("not a model"), 0644))

		err := p.LoadModel(corrupt)

		var loadErr *domain.ModelLoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Equal(t, corrupt, loadErr.Path)
		assert.Equal(t, ModelLoaded, p.State())
		assert.Equal(t, before, p.ModelInfo().ModelPath)
		assert.Equal(t, domain.SourceModel, p.PredictRisk(lowRiskRecord()).Source)
	})
}

func TestPredictor_FailedLoadWithoutModel(t *testing.T) {
	p := newTestPredictor(t, testConfig())

	err := p.LoadModel(filepath.Join(t.TempDir(), "missing.json"))

	assert.ErrorIs(t, err, domain.ErrModelLoad)
	assert.Equal(t, NoModel, p.State())
	assert.False(t, p.ModelInfo().ModelLoaded)
}

func TestPredictor_LoadStartupModel(t *testing.T) {
	dir := t.TempDir()
	good := writeLogisticModel(t, dir, "ensemble_model.json", 1)

	t.Run("First_Existing_Candidate", func(t *testing.T) {
		cfg := testConfig()
		cfg.DefaultModelPaths = []string{filepath.Join(dir, "models", "ensemble_model.json"), good}
		p := newTestPredictor(t, cfg)

		require.NoError(t, p.LoadStartupModel())
		assert.Equal(t, good, p.ModelInfo().ModelPath)
	})

	t.Run("No_Candidates", func(t *testing.T) {
		cfg := testConfig()
		cfg.ModelPath = filepath.Join(dir, "nope.json")
		p := newTestPredictor(t, cfg)

		err := p.LoadStartupModel()

		assert.True(t, errors.Is(err, model.ErrNoModelFound))
		assert.Equal(t, NoModel, p.State())
		assert.Equal(t, domain.SourceFallback, p.PredictRisk(lowRiskRecord()).Source)
	})
}

func TestPredictor_FailingModelFallsThrough(t *testing.T) {
	p := newTestPredictor(t, testConfig())
	p.loadMu.Lock()
	p.install(&model.Loaded{Model: explodingModel{}, Kind: "custom", Path: "memory"})
	p.loadMu.Unlock()

	for _, record := range []domain.PatientRecord{lowRiskRecord(), highRiskRecord()} {
		result := p.PredictRisk(record)

		assert.Equal(t, NewFallbackScorer().Score(record), result.RiskPercentage)
		assert.Equal(t, domain.SourceFallback, result.Source)
	}
}

func TestPredictor_BreakerOpensOnRepeatedFailures(t *testing.T) {
	cfg := testConfig()
	cfg.Breaker.MaxFailures = 1
	p := newTestPredictor(t, cfg)

	m := new(MockModel)
	m.On("PredictProba", mock.Anything).Return(nil, errors.New("bad weights"))

	p.loadMu.Lock()
	p.install(&model.Loaded{Model: m, Kind: "custom", Path: "memory"})
	p.loadMu.Unlock()

	assert.Equal(t, domain.SourceFallback, p.PredictRisk(lowRiskRecord()).Source)
	assert.Equal(t, "open", p.ModelInfo().BreakerState)

	assert.Equal(t, domain.SourceFallback, p.PredictRisk(highRiskRecord()).Source)
	m.AssertNumberOfCalls(t, "PredictProba", 1)
}

func TestPredictor_Cache(t *testing.T) {
	cfg := testConfig()
	cfg.CacheSize = 16
	p := newTestPredictor(t, cfg)

	t.Run("Returned_Results_Are_Independent", func(t *testing.T) {
		first := p.PredictRisk(highRiskRecord())
		first.Recommendations[0] = "tampered"

		second := p.PredictRisk(highRiskRecord())
		assert.Equal(t, AdviceQuitSmoking, second.Recommendations[0])
	})

	t.Run("Load_Invalidates_Cached_Fallbacks", func(t *testing.T) {
		assert.Equal(t, domain.SourceFallback, p.PredictRisk(lowRiskRecord()).Source)

		require.NoError(t, p.LoadModel(writeLogisticModel(t, t.TempDir(), "m.json", 0)))

		assert.Equal(t, domain.SourceModel, p.PredictRisk(lowRiskRecord()).Source)
	})

	t.Run("Inference_Failures_Are_Not_Cached", func(t *testing.T) {
		m := new(MockModel)
		m.On("PredictProba", mock.Anything).Return(nil, errors.New("transient")).Once()
		m.On("PredictProba", mock.Anything).Return([][]float64{{0.2, 0.8}}, nil)

		p.loadMu.Lock()
		p.install(&model.Loaded{Model: m, Kind: "custom", Path: "memory"})
		p.loadMu.Unlock()

		assert.Equal(t, domain.SourceFallback, p.PredictRisk(lowRiskRecord()).Source)

		result := p.PredictRisk(lowRiskRecord())
		assert.Equal(t, domain.SourceModel, result.Source)
		assert.Equal(t, 80.0, result.RiskPercentage)
	})
}

func TestPredictor_CacheHitsAreCounted(t *testing.T) {
	cfg := testConfig()
	cfg.CacheSize = 16
	recorder := metrics.NewRecorder()
	p, err := NewPredictor(cfg, fittedPreprocessor(t), testLogger(), WithMetrics(recorder))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		p.PredictRisk(lowRiskRecord())
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(recorder.Predictions("fallback", "Low Risk")))
	assert.Equal(t, 3.0, testutil.ToFloat64(recorder.Fallbacks(metrics.ReasonNoModel)))

	require.NoError(t, p.LoadModel(writeLogisticModel(t, t.TempDir(), "m.json", 0)))
	for i := 0; i < 2; i++ {
		assert.Equal(t, domain.SourceModel, p.PredictRisk(lowRiskRecord()).Source)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(recorder.Predictions("model", "Moderate Risk")))
	assert.Equal(t, 3.0, testutil.ToFloat64(recorder.Fallbacks(metrics.ReasonNoModel)))
}

func TestPredictor_DefaultValuesIsACopy(t *testing.T) {
	p := newTestPredictor(t, testConfig())

	values := p.DefaultValues()
	assert.Len(t, values, 15)
	assert.Equal(t, 45, values[domain.AttrAge])
	assert.Equal(t, "Asymptomatic", values[domain.AttrChestPainType])

	values[domain.AttrAge] = 99
	assert.Equal(t, 45, p.DefaultValues()[domain.AttrAge])
}

func TestPredictor_ConcurrentPredictionsAndLoads(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeLogisticModel(t, dir, "a.json", -1),
		writeLogisticModel(t, dir, "b.json", 1),
	}

	cfg := testConfig()
	cfg.CacheSize = 8
	p := newTestPredictor(t, cfg)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			assert.NoError(t, p.LoadModel(paths[i%2]))
		}
	}()

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			record := highRiskRecord()
			if g%2 == 0 {
				record = lowRiskRecord()
			}
			for i := 0; i < 50; i++ {
				result := p.PredictRisk(record)
				assert.GreaterOrEqual(t, result.RiskPercentage, 0.0)
				assert.LessOrEqual(t, result.RiskPercentage, 100.0)
				assert.NotEmpty(t, result.Recommendations)
			}
		}(g)
	}

	wg.Wait()
	assert.Equal(t, ModelLoaded, p.State())
}
