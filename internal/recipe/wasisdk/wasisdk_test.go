package wasisdk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompilerExtraOptions_Plain(t *testing.T) {
	cOpts, swiftXcc, linker, defines := compilerExtraOptions(TargetPlain)
	assert.Empty(t, cOpts)
	assert.Empty(t, swiftXcc)
	assert.Empty(t, linker)
	assert.Empty(t, defines)
}

func TestCompilerExtraOptions_Threaded(t *testing.T) {
	cOpts, swiftXcc, linker, _ := compilerExtraOptions(TargetThreaded)
	assert.Contains(t, cOpts, "-pthread")
	assert.Contains(t, cOpts, "-ftls-model=local-exec")
	assert.Contains(t, swiftXcc, "-Xcc")
	assert.Contains(t, swiftXcc, "-pthread")
	assert.Equal(t, []string{"--import-memory", "--export-memory", "--shared-memory", "--max-memory=1073741824"}, linker)
}

func TestCompilerExtraOptions_Embedded(t *testing.T) {
	_, swiftXcc, linker, defines := compilerExtraOptions(TargetEmbedded)
	assert.Contains(t, swiftXcc, "Embedded")
	assert.Contains(t, swiftXcc, "-wmo")
	assert.Equal(t, []string{"-Xlinker", "-lc++", "-Xlinker", "-lswift_Concurrency"}, linker)
	assert.Equal(t, []string{"-D__EMBEDDED_SWIFT__"}, defines)
}
