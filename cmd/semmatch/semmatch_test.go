package semmatchcmder_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	semmatchcmder "github.com/talentlens/semmatch/cmd/semmatch"
)

func TestSemmatchCmd(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Semmatch Command Suite")
}

var _ = Describe("NewSemmatchCmd", func() {
	It("creates the root command", func() {
		cmd := semmatchcmder.NewSemmatchCmd()
		Expect(cmd.Use).To(Equal("semmatch"))
	})

	It("registers all subcommands", func() {
		cmd := semmatchcmder.NewSemmatchCmd()
		cmds := cmd.Commands()
		names := make([]string, 0, len(cmds))
		for _, sub := range cmds {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements("match", "normalize", "serve", "config", "version"))
	})

	It("has the global debug flag", func() {
		cmd := semmatchcmder.NewSemmatchCmd()
		Expect(cmd.PersistentFlags().Lookup("debug")).NotTo(BeNil())
	})

	It("has the global config-dir flag", func() {
		cmd := semmatchcmder.NewSemmatchCmd()
		Expect(cmd.PersistentFlags().Lookup("config-dir")).NotTo(BeNil())
	})
})
