package main

import (
	"os"
	"path"
	"strings"
	"text/template"

	"github.com/fatih/camelcase"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// approachTemplateSource is the skeleton of a new labeling approach.
const approachTemplateSource = `package {{.package}}

import (
	"context"

	"github.com/cyraxred/labelshark"
)

// {{.name}} labels the commits.
type {{.name}} struct {
	l labelshark.Logger
}

const (
	// {{.name}}Name is the name of the {{.name}} approach and the prefix of its labels.
	{{.name}}Name = "{{.flag}}"
	// Label{{.name}} is the label emitted by {{.name}}.
	Label{{.name}} = "{{.label}}"
)

// Name of this Approach. Uniquely identifies the type, prefixes the label names.
func ({{.varname}} *{{.name}}) Name() string {
	return {{.name}}Name
}

// Description returns the text which explains what the approach is doing.
func ({{.varname}} *{{.name}}) Description() string {
	return "{{.name}} labels the commits."
}

// ListConfigurationOptions returns the list of changeable public properties of this Approach.
func ({{.varname}} *{{.name}}) ListConfigurationOptions() []labelshark.ConfigurationOption {
	return []labelshark.ConfigurationOption{}
}

// Configure sets the properties previously published by ListConfigurationOptions().
func ({{.varname}} *{{.name}}) Configure(facts map[string]interface{}) error {
	if l, exists := facts[labelshark.ConfigLogger].(labelshark.Logger); exists {
		{{.varname}}.l = l
	} else {
		{{.varname}}.l = labelshark.NewLogger()
	}
	return nil
}

// Label classifies the commit.
func ({{.varname}} *{{.name}}) Label(ctx context.Context, commit *labelshark.Commit) (labelshark.Labels, error) {
	return labelshark.Labels{ {Name: Label{{.name}}, Value: false} }, nil
}
`

// generateApproach writes the skeleton of the approach to outputDir and returns the file path.
func generateApproach(name, outputDir, varname, flag, pkg string) (string, error) {
	if name == "" {
		return "", errors.New("the approach name must not be empty")
	}
	splitted := camelcase.Split(name)
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return "", err
	}
	outputPath := path.Join(outputDir, strings.ToLower(strings.Join(splitted, "_"))+".go")
	if varname == "" {
		varname = strings.ToLower(splitted[0][:1])
	}
	if flag == "" {
		flag = strings.ToLower(strings.Join(splitted, ""))
	}
	gen := template.Must(template.New("approach").Parse(approachTemplateSource))
	outFile, err := os.Create(outputPath)
	if err != nil {
		return "", err
	}
	defer outFile.Close()
	dict := map[string]string{
		"name": name, "varname": varname, "flag": flag, "package": pkg,
		"label": strings.ToLower(splitted[len(splitted)-1])}
	return outputPath, gen.Execute(outFile, dict)
}

// generateApproachCmd represents the generate-approach command
var generateApproachCmd = &cobra.Command{
	Use:   "generate-approach",
	Short: "Write the source skeleton of a new labeling approach.",
	Long:  ``,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		name, _ := flags.GetString("name")
		outputDir, _ := flags.GetString("output")
		varname, _ := flags.GetString("varname")
		flag, _ := flags.GetString("flag")
		pkg, _ := flags.GetString("package")
		outputPath, err := generateApproach(name, outputDir, varname, flag, pkg)
		if err == nil {
			cmd.Println("wrote", outputPath)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(generateApproachCmd)
	generateApproachCmd.SetUsageFunc(generateApproachCmd.UsageFunc())
	gaFlags := generateApproachCmd.Flags()
	gaFlags.StringP("name", "n", "", "Name of the approach, CamelCase. Required.")
	if err := generateApproachCmd.MarkFlagRequired("name"); err != nil {
		panic(err)
	}
	gaFlags.StringP("output", "o", ".", "Output directory for the generated file.")
	gaFlags.String("varname", "", "Name of the receiver, inferred from -n if not specified.")
	gaFlags.String("flag", "", "Name of the approach and the label prefix, inferred from -n if not specified.")
	gaFlags.String("package", "main", "Name of the package.")
}
