package descriptions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetToolDescription(t *testing.T) {
	for _, name := range GetAllToolNames() {
		assert.NotEqual(t, "Tool description not available", GetToolDescription(name), name)
	}
	assert.Equal(t, "Tool description not available", GetToolDescription("pdf_read_file"))
}

func TestGetAllToolNames(t *testing.T) {
	assert.Equal(t, []string{
		"form3_batch",
		"form3_convert",
		"form3_inspect",
		"form3_list",
		"form3_server_info",
		"form3_validate",
	}, GetAllToolNames())
}
