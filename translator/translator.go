package translator

import (
	"context"
	"fmt"
	"strings"
	"sync"

	gst "github.com/richinsley/goshadertranslator"
)

var (
	translator *gst.ShaderTranslator
	initErr    error
	initOnce   sync.Once
)

// GetTranslator returns the process-wide translator, creating it on first use.
func GetTranslator() (*gst.ShaderTranslator, error) {
	initOnce.Do(func() {
		translator, initErr = gst.NewShaderTranslator(context.Background())
	})
	return translator, initErr
}

// IsES reports whether source declares GLSL ES 3.00.
func IsES(source string) bool {
	return strings.HasPrefix(strings.TrimSpace(source), "#version 300 es")
}

// Result is a translated shader stage.
type Result struct {
	Code string
	// Names maps each source uniform name to the name in Code.
	Names map[string]string
}

// ToDesktop translates a GLSL ES 3.00 stage ("vertex" or "fragment") to GLSL 4.10.
func ToDesktop(source, stage string) (*Result, error) {
	t, err := GetTranslator()
	if err != nil {
		return nil, fmt.Errorf("shader translator unavailable: %w", err)
	}
	out, err := t.TranslateShader(source, stage, gst.ShaderSpecWebGL2, gst.OutputFormatGLSL410)
	if err != nil {
		return nil, fmt.Errorf("%s shader translation failed: %w", stage, err)
	}
	res := &Result{Code: out.Code, Names: make(map[string]string, len(out.Variables))}
	for name, v := range out.Variables {
		res.Names[name] = v.MappedName
	}
	return res, nil
}
