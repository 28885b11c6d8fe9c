package model

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// ensureInferenceScript locates the ONNX inference script next to the
// model artifact, falling back to writing the embedded copy.
func ensureInferenceScript(modelPath string) (string, error) {
	scriptDir := filepath.Dir(modelPath)
	scriptPath := filepath.Join(scriptDir, "onnx_inference.py")
	if _, err := os.Stat(scriptPath); err == nil {
		return scriptPath, nil
	}

	scriptPath = filepath.Join(scriptDir, "onnx_inference_embedded.py")
	if err := createInferenceScript(scriptPath); err != nil {
		return "", err
	}
	return scriptPath, nil
}

func findPython() (string, error) {
	// Prefer an active virtual environment.
	if venvPath := os.Getenv("VIRTUAL_ENV"); venvPath != "" {
		candidates := []string{
			filepath.Join(venvPath, "bin", "python3"),
			filepath.Join(venvPath, "bin", "python"),
			filepath.Join(venvPath, "Scripts", "python.exe"),
		}
		for _, venvPython := range candidates {
			if _, err := os.Stat(venvPython); err == nil {
				if hasONNXRuntime(venvPython) {
					log.Info().Str("python_path", venvPython).Msg("using virtual environment python")
					return venvPython, nil
				}
			}
		}
	}

	candidates := []string{"python3", "python", "python3.12", "python3.11", "python3.10"}
	for _, candidate := range candidates {
		path, err := exec.LookPath(candidate)
		if err != nil {
			continue
		}
		if hasONNXRuntime(path) {
			log.Info().Str("python_path", path).Msg("using system python")
			return path, nil
		}
	}

	return "", fmt.Errorf("no python 3 with onnxruntime found")
}

func hasONNXRuntime(path string) bool {
	cmd := exec.Command(path, "-c", "import sys, onnxruntime; print('Python', sys.version)")
	output, err := cmd.Output()
	return err == nil && strings.Contains(string(output), "Python 3")
}

func createInferenceScript(scriptPath string) error {
	script := `#!/usr/bin/env python3
"""ONNX inference script for the concrete strength regressor (embedded)."""
import sys
import json
import numpy as np

try:
    import onnxruntime as ort
except ImportError:
    print(json.dumps({"error": "onnxruntime not installed"}))
    sys.exit(1)

def main():
    if len(sys.argv) != 2:
        print(json.dumps({"error": "Usage: python onnx_inference.py <model_path>"}))
        sys.exit(1)

    model_path = sys.argv[1]

    try:
        request = json.load(sys.stdin)
        features = np.array([request["features"]], dtype=np.float32)

        session = ort.InferenceSession(model_path)
        input_name = session.get_inputs()[0].name

        outputs = session.run(None, {input_name: features})

        # Regression models emit a single output tensor of shape (1,) or (1, 1).
        prediction = float(np.asarray(outputs[0]).reshape(-1)[0])

        print(json.dumps({"prediction": prediction}))

    except Exception as e:
        print(json.dumps({"error": str(e)}))
        sys.exit(1)

if __name__ == "__main__":
    main()
`

	return os.WriteFile(scriptPath, []byte(script), 0755)
}
