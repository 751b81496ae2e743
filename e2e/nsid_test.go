//go:build e2e

package e2e

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const toolProject = `name: Tool
version: 2.1.0
publisher: Example Corp
mainExecutable: tool.exe
files:
  - source: tool.exe
actions:
  - kind: EnvAppend
    scope: user
    name: PATH
    fragment: $INSTDIR
    separator: ";"
  - kind: RegistryWrite
    root: HKCU
    key: Software\Example\Tool
    valueName: Mode
    valueType: string
    data: fast
  - kind: ExecPostInstall
    command: $INSTDIR\tool.exe
    arguments: --register
    wait: true
`

const unicodeProject = `{
  "name": "Uni",
  "version": "1.0.0",
  "options": {"encoding": "cp1252"},
  "actions": [
    {"kind": "CreateDir", "path": "$INSTDIR\\日本"}
  ]
}
`

var _ = Describe("nsid", Ordered, func() {
	BeforeAll(func() {
		By("Writing test projects")
		_, err := testExec.ExecBash("mkdir -p projects && cat > projects/tool.yaml <<'EOF'\n" + toolProject + "EOF")
		Expect(err).NotTo(HaveOccurred())
		_, err = testExec.ExecBash("cat > projects/uni.json <<'EOF'\n" + unicodeProject + "EOF")
		Expect(err).NotTo(HaveOccurred())
	})

	It("displays version information", func() {
		output, err := testExec.Exec("nsid", "version")
		Expect(err).NotTo(HaveOccurred())
		Expect(output).To(ContainSubstring("nsid version"))
	})

	Context("Configuration", func() {
		It("writes a default config.cue", func() {
			output, err := testExec.Exec("nsid", "config", "init", "--force")
			Expect(err).NotTo(HaveOccurred())
			Expect(output).To(ContainSubstring("config.cue"))
		})

		It("shows the effective configuration", func() {
			output, err := testExec.Exec("nsid", "config", "show", "-o", "json")
			Expect(err).NotTo(HaveOccurred())

			var cfg map[string]any
			Expect(json.Unmarshal([]byte(output), &cfg)).To(Succeed())
			Expect(cfg).To(HaveKeyWithValue("makensisPath", "makensis"))
			Expect(cfg).To(HaveKeyWithValue("defaultEncoding", "utf8"))
		})
	})

	Context("Init and Validate", func() {
		It("creates a starter project", func() {
			output, err := testExec.Exec("nsid", "init", "--name", "Widget", "widget")
			Expect(err).NotTo(HaveOccurred())
			Expect(output).To(ContainSubstring("Created nsid.cue"))
			Expect(output).To(ContainSubstring("Created schema.cue"))
		})

		It("refuses to overwrite the project", func() {
			_, err := testExec.Exec("nsid", "init", "--name", "Widget", "widget")
			Expect(err).To(HaveOccurred())
		})

		It("validates the generated and hand-written projects", func() {
			output, err := testExec.Exec("nsid", "validate", "widget/nsid.cue", "projects/tool.yaml")
			Expect(err).NotTo(HaveOccurred())
			Expect(output).To(ContainSubstring("Widget 0.1.0"))
			Expect(output).To(ContainSubstring("Tool 2.1.0"))
			Expect(output).To(ContainSubstring("Validation successful"))
		})
	})

	Context("Plan", func() {
		It("shows the reversal plan as text", func() {
			output, err := testExec.Exec("nsid", "plan", "--no-color", "projects/tool.yaml")
			Expect(err).NotTo(HaveOccurred())
			Expect(output).To(ContainSubstring("Install:"))
			Expect(output).To(ContainSubstring("EnvRemoveFragment"))
			Expect(output).To(ContainSubstring("Not reversible"))
			Expect(output).To(ContainSubstring("ExecPostInstall"))
		})

		It("exports the plan as JSON", func() {
			output, err := testExec.Exec("nsid", "plan", "-o", "json", "projects/tool.yaml")
			Expect(err).NotTo(HaveOccurred())

			var plan struct {
				Install       []map[string]any `json:"install"`
				NonReversible []map[string]any `json:"nonReversible"`
			}
			Expect(json.Unmarshal([]byte(output), &plan)).To(Succeed())
			Expect(plan.Install).To(HaveLen(4))
			Expect(plan.NonReversible).To(HaveLen(1))
			Expect(plan.NonReversible[0]).To(HaveKeyWithValue("index", BeNumerically("==", 3)))
		})
	})

	Context("Export", func() {
		It("exports several projects concurrently", func() {
			output, err := testExec.Exec("nsid", "export", "--out", "dist", "--parallel", "2", "widget/nsid.cue", "projects/tool.yaml")
			Expect(err).NotTo(HaveOccurred())
			Expect(output).To(ContainSubstring("Exported Widget"))
			Expect(output).To(ContainSubstring("Exported Tool"))
			Expect(output).To(ContainSubstring("Export complete!"))
		})

		It("writes an uninstaller that never runs the post-install command", func() {
			output, err := testExec.ExecBash(`sed -n '/Section "Uninstall"/,/SectionEnd/p' dist/tool.nsi`)
			Expect(err).NotTo(HaveOccurred())
			Expect(output).To(ContainSubstring(`DeleteRegValue HKCU "Software\Example\Tool" "Mode"`))
			Expect(output).To(ContainSubstring("Call un.RemoveListFragment"))
			Expect(output).NotTo(ContainSubstring("--register"))
		})

		It("splits the uninstaller into its own file", func() {
			_, err := testExec.Exec("nsid", "export", "--out", "split", "--split", "projects/tool.yaml")
			Expect(err).NotTo(HaveOccurred())
			output, err := testExec.ExecBash("ls split")
			Expect(err).NotTo(HaveOccurred())
			Expect(output).To(ContainSubstring("tool.nsi"))
			Expect(output).To(ContainSubstring("tool_uninstall.nsi"))
		})

		It("records and verifies checksums", func() {
			_, err := testExec.Exec("nsid", "export", "--out", "sums", "--checksums", "projects/tool.yaml")
			Expect(err).NotTo(HaveOccurred())
			output, err := testExec.Exec("nsid", "verify", "sums")
			Expect(err).NotTo(HaveOccurred())
			Expect(output).To(ContainSubstring("tool.nsi: OK"))

			_, err = testExec.ExecBash("echo '; edited' >> sums/tool.nsi")
			Expect(err).NotTo(HaveOccurred())
			output, err = testExec.Exec("nsid", "verify", "sums")
			Expect(err).To(HaveOccurred())
			Expect(output).To(ContainSubstring("checksum mismatch"))
		})

		It("rejects text the encoding cannot represent", func() {
			output, err := testExec.Exec("nsid", "export", "--no-color", "--out", "dist", "projects/uni.json")
			Expect(err).To(HaveOccurred())
			Expect(output).To(ContainSubstring("E301"))

			_, err = testExec.ExecBash("test ! -e dist/uni.nsi")
			Expect(err).NotTo(HaveOccurred())
		})

		It("accepts the same project as UTF-8", func() {
			_, err := testExec.Exec("nsid", "export", "--encoding", "utf8", "--out", "dist", "projects/uni.json")
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Context("Compile", func() {
		BeforeAll(func() {
			_, err := testExec.ExecBash("mkdir -p bin && printf '#!/bin/sh\\necho \"fake makensis $*\"\\n' > bin/makensis && chmod +x bin/makensis")
			Expect(err).NotTo(HaveOccurred())
		})

		It("runs makensis on the exported script", func() {
			output, err := testExec.Exec("nsid", "compile", "--makensis", testExec.Home()+"/bin/makensis", "--show-output", "--out", "build", "projects/tool.yaml")
			Expect(err).NotTo(HaveOccurred())
			Expect(output).To(ContainSubstring("fake makensis -V2 -NOCD"))
			Expect(output).To(ContainSubstring("Compiled"))
		})

		It("keeps the output of a failed compile", func() {
			_, err := testExec.ExecBash("printf '#!/bin/sh\\necho \"Error in script line 7\"\\nexit 1\\n' > bin/badnsis && chmod +x bin/badnsis")
			Expect(err).NotTo(HaveOccurred())

			output, err := testExec.Exec("nsid", "compile", "--no-color", "--makensis", testExec.Home()+"/bin/badnsis", "--out", "build", "projects/tool.yaml")
			Expect(err).To(HaveOccurred())
			Expect(output).To(ContainSubstring("see nsid logs"))

			output, err = testExec.Exec("nsid", "logs", "Tool")
			Expect(err).NotTo(HaveOccurred())
			Expect(output).To(ContainSubstring("Error in script line 7"))
		})

		It("diagnoses the environment", func() {
			output, err := testExec.Exec("nsid", "doctor", "--no-color", "--makensis", testExec.Home()+"/bin/makensis", "--out", "sums")
			Expect(err).To(HaveOccurred())
			Expect(output).To(ContainSubstring("makensis fake makensis -VERSION"))
			Expect(output).To(ContainSubstring("changed since export"))
		})

		It("reports a missing compiler", func() {
			output, err := testExec.Exec("nsid", "compile", "--no-color", "--makensis", "/nonexistent/makensis", "projects/tool.yaml")
			Expect(err).To(HaveOccurred())
			Expect(output).To(ContainSubstring("E601"))
		})
	})

	It("generates shell completion", func() {
		output, err := testExec.Exec("nsid", "completion", "bash")
		Expect(err).NotTo(HaveOccurred())
		Expect(output).To(ContainSubstring("bash completion"))
	})
})
