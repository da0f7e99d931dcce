package artifact_test

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fraudguard/scoring-service/internal/domain/model"
	"github.com/fraudguard/scoring-service/internal/infrastructure/artifact"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func logisticArtifact(t *testing.T) []byte {
	t.Helper()
	coefficients := make([]float64, model.NumFeatures())
	coefficients[model.NumFeatures()-1] = 0.5
	data, err := json.Marshal(map[string]any{
		"model_version": "v1.2",
		"type":          "logistic_regression",
		"feature_order": model.FeatureOrder(),
		"intercept":     -2.0,
		"coefficients":  coefficients,
	})
	require.NoError(t, err)
	return data
}

func TestLoader_LoadClassifier(t *testing.T) {
	t.Run("loads a logistic regression artifact", func(t *testing.T) {
		dir := t.TempDir()
		loader := &artifact.Loader{ClassifierPath: writeFile(t, dir, "classifier.json", logisticArtifact(t))}

		classifier, version, err := loader.LoadClassifier()

		require.NoError(t, err)
		assert.Equal(t, "v1.2", version)

		vector := make([]float64, model.NumFeatures())
		pred, err := classifier.Predict(vector)
		require.NoError(t, err)
		assert.Equal(t, 0, pred.Label)
	})

	t.Run("loads a random forest artifact", func(t *testing.T) {
		dir := t.TempDir()
		data, err := json.Marshal(map[string]any{
			"model_version": "v2.0",
			"type":          "random_forest",
			"feature_order": model.FeatureOrder(),
			"trees": []map[string]any{
				{"nodes": []map[string]any{
					{"feature": 29, "threshold": 0.5, "left": 1, "right": 2},
					{"leaf": true, "value": 0.1},
					{"leaf": true, "value": 0.9},
				}},
			},
		})
		require.NoError(t, err)
		loader := &artifact.Loader{ClassifierPath: writeFile(t, dir, "classifier.json", data)}

		classifier, version, err := loader.LoadClassifier()

		require.NoError(t, err)
		assert.Equal(t, "v2.0", version)

		vector := make([]float64, model.NumFeatures())
		vector[29] = 10.0
		pred, err := classifier.Predict(vector)
		require.NoError(t, err)
		assert.Equal(t, 1, pred.Label)
		assert.InDelta(t, 0.9, pred.Probability, 1e-12)
	})

	t.Run("missing file fails", func(t *testing.T) {
		loader := &artifact.Loader{ClassifierPath: filepath.Join(t.TempDir(), "absent.json")}

		_, _, err := loader.LoadClassifier()

		assert.Error(t, err)
	})

	t.Run("corrupted JSON fails", func(t *testing.T) {
		dir := t.TempDir()
		loader := &artifact.Loader{ClassifierPath: writeFile(t, dir, "classifier.json", []byte("{broken"))}

		_, _, err := loader.LoadClassifier()

		assert.Error(t, err)
	})

	t.Run("wrong feature order fails", func(t *testing.T) {
		dir := t.TempDir()
		order := model.FeatureOrder()
		order[0], order[29] = order[29], order[0]
		coefficients := make([]float64, model.NumFeatures())
		data, err := json.Marshal(map[string]any{
			"type":          "logistic_regression",
			"feature_order": order,
			"coefficients":  coefficients,
		})
		require.NoError(t, err)
		loader := &artifact.Loader{ClassifierPath: writeFile(t, dir, "classifier.json", data)}

		_, _, err = loader.LoadClassifier()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "feature_order")
	})

	t.Run("wrong coefficient count fails", func(t *testing.T) {
		dir := t.TempDir()
		data, err := json.Marshal(map[string]any{
			"type":          "logistic_regression",
			"feature_order": model.FeatureOrder(),
			"coefficients":  []float64{1, 2, 3},
		})
		require.NoError(t, err)
		loader := &artifact.Loader{ClassifierPath: writeFile(t, dir, "classifier.json", data)}

		_, _, err = loader.LoadClassifier()

		assert.Error(t, err)
	})

	t.Run("unsupported model type fails", func(t *testing.T) {
		dir := t.TempDir()
		data, err := json.Marshal(map[string]any{
			"type":          "gradient_boosting",
			"feature_order": model.FeatureOrder(),
		})
		require.NoError(t, err)
		loader := &artifact.Loader{ClassifierPath: writeFile(t, dir, "classifier.json", data)}

		_, _, err = loader.LoadClassifier()

		assert.Error(t, err)
	})
}

func TestLoader_LoadScaler(t *testing.T) {
	t.Run("loads fitted parameters", func(t *testing.T) {
		dir := t.TempDir()
		data := []byte(`{"fields":[
			{"name":"Time","center":94813.0,"scale":84978.5},
			{"name":"Amount","center":22.0,"scale":55.3}
		]}`)
		loader := &artifact.Loader{ScalerPath: writeFile(t, dir, "scaler.json", data)}

		scaler, err := loader.LoadScaler()

		require.NoError(t, err)
		assert.Equal(t, []string{"Time", "Amount"}, scaler.ScaledFields())
	})

	t.Run("zero scale fails", func(t *testing.T) {
		dir := t.TempDir()
		data := []byte(`{"fields":[{"name":"Amount","center":1.0,"scale":0.0}]}`)
		loader := &artifact.Loader{ScalerPath: writeFile(t, dir, "scaler.json", data)}

		_, err := loader.LoadScaler()

		assert.Error(t, err)
	})

	t.Run("missing file fails", func(t *testing.T) {
		loader := &artifact.Loader{ScalerPath: filepath.Join(t.TempDir(), "absent.json")}

		_, err := loader.LoadScaler()

		assert.Error(t, err)
	})
}

func TestLoader_LoadBaseline(t *testing.T) {
	t.Run("loads field baselines", func(t *testing.T) {
		dir := t.TempDir()
		yaml := "fields:\n  Time:\n    mean: 94813.0\n    std: 47488.1\n  Amount:\n    mean: 88.35\n    std: 250.12\n"
		loader := &artifact.Loader{BaselinePath: writeFile(t, dir, "baseline.yaml", []byte(yaml))}

		baseline, err := loader.LoadBaseline()

		require.NoError(t, err)
		require.Len(t, baseline, 2)
		assert.InDelta(t, 88.35, baseline["Amount"].Mean, 1e-9)
		assert.InDelta(t, 250.12, baseline["Amount"].Std, 1e-9)
	})

	t.Run("missing file disables drift without error", func(t *testing.T) {
		loader := &artifact.Loader{BaselinePath: filepath.Join(t.TempDir(), "absent.yaml")}

		baseline, err := loader.LoadBaseline()

		require.NoError(t, err)
		assert.Nil(t, baseline)
	})

	t.Run("empty path disables drift", func(t *testing.T) {
		loader := &artifact.Loader{}

		baseline, err := loader.LoadBaseline()

		require.NoError(t, err)
		assert.Nil(t, baseline)
	})

	t.Run("corrupted YAML fails", func(t *testing.T) {
		dir := t.TempDir()
		loader := &artifact.Loader{BaselinePath: writeFile(t, dir, "baseline.yaml", []byte("fields: ["))}

		_, err := loader.LoadBaseline()

		assert.Error(t, err)
	})
}

func TestLoader_EndToEndScenario(t *testing.T) {
	// amount=149.62, time=0.0, V1..V28=0.0 with a fixed artifact set must
	// produce a deterministic prediction.
	dir := t.TempDir()
	loader := &artifact.Loader{
		ClassifierPath: writeFile(t, dir, "classifier.json", logisticArtifact(t)),
		ScalerPath: writeFile(t, dir, "scaler.json", []byte(
			`{"fields":[{"name":"Time","center":0.0,"scale":1.0},{"name":"Amount","center":0.0,"scale":100.0}]}`)),
	}

	classifier, _, err := loader.LoadClassifier()
	require.NoError(t, err)
	scaler, err := loader.LoadScaler()
	require.NoError(t, err)

	raw := map[string]any{"Time": 0.0, "Amount": 149.62}
	for i := 1; i <= 28; i++ {
		raw[fmt.Sprintf("V%d", i)] = 0.0
	}
	tx, err := model.NewTransaction(raw)
	require.NoError(t, err)

	vector, err := scaler.Transform(tx)
	require.NoError(t, err)
	assert.InDelta(t, 1.4962, vector[29], 1e-9)

	first, err := classifier.Predict(vector)
	require.NoError(t, err)
	second, err := classifier.Predict(vector)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	// logit = -2 + 0.5*1.4962 < 0, so the probability stays below 0.5.
	assert.Equal(t, 0, first.Label)
	assert.Less(t, first.Probability, 0.3)
}
