package chime

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestChime(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Chime Suite")
}
