package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/beanc/internal/cli/ui"
	"github.com/conduit-lang/beanc/internal/compiler/metadata"
	"github.com/conduit-lang/beanc/internal/compiler/typeref"
)

// NewInspectCommand creates the inspect command
func NewInspectCommand() *cobra.Command {
	var (
		asJSON bool
		handle string
	)

	cmd := &cobra.Command{
		Use:   "inspect <artifact>",
		Short: "Show the contents of a bean definition artifact",
		Long: `Display a compiled artifact: bean flags, constructor, injection points,
executable method handles and configuration builders. Compressed (.json.gz)
artifacts are read transparently.`,
		Example: `  # Summarize an artifact
  beanc inspect build/beans/com.acme.$ServiceDefinition.json

  # Look up a single executable method handle
  beanc inspect build/beans/com.acme.$ServiceDefinition.json --handle 'com.acme.$ServiceDefinition$Exec0'

  # Print the artifact document
  beanc inspect build/beans/com.acme.$ServiceDefinition.json.gz --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			artifact, err := metadata.ReadFile(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if handle != "" {
				method, ok := artifact.Handle(handle)
				if !ok {
					handles := make([]string, 0, len(artifact.ExecutableMethods))
					for _, m := range artifact.ExecutableMethods {
						handles = append(handles, m.Handle)
					}
					suggestions := ui.FindSimilar(handle, handles, nil)
					fmt.Fprint(cmd.ErrOrStderr(), ui.HandleNotFoundError(handle, path, suggestions, false))
					return fmt.Errorf("handle %s not found in %s", handle, path)
				}
				if asJSON {
					return encodeJSON(out, method)
				}
				renderMethod(out, method)
				return nil
			}

			if asJSON {
				data, err := metadata.Serialize(artifact)
				if err != nil {
					return err
				}
				_, err = out.Write(append(data, '\n'))
				return err
			}
			renderArtifact(out, artifact)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of tables")
	cmd.Flags().StringVar(&handle, "handle", "", "Show only the executable method with this handle")

	return cmd
}

func encodeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func renderArtifact(w io.Writer, a *metadata.Artifact) {
	ui.Header(w, a.BeanType, false)

	summary := ui.NewKeyValueTable(w, false)
	summary.AddRow("Definition", a.Definition)
	summary.AddRow("Provided type", a.ProvidedType.String())
	summary.AddRow("Singleton", strconv.FormatBool(a.Singleton))
	summary.AddRow("Proxy", strconv.FormatBool(a.Proxy))
	summary.AddRow("Interface", strconv.FormatBool(a.Interface))
	summary.AddRow("Validated", strconv.FormatBool(a.Validated))
	summary.AddRow("Method processing", strconv.FormatBool(a.RequiresMethodProcessing))
	if a.SuperType != nil {
		summary.AddRow("Super type", a.SuperType.Name+" ("+a.SuperType.Kind+")")
	}
	if len(a.Markers) > 0 {
		summary.AddRow("Markers", joinRefs(a.Markers))
	}
	if a.Constructor != nil {
		summary.AddRow("Constructor", formatParams(a.Constructor.Parameters))
	}
	if a.ProxiedConstructor != nil {
		summary.AddRow("Proxied constructor", a.ProxiedConstructor.DeclaringType.String()+formatParams(a.ProxiedConstructor.Parameters))
	}
	summary.AddRow("Digest", a.Digest)
	summary.Render()

	if len(a.InjectionPoints) > 0 {
		fmt.Fprintln(w)
		ui.Header(w, "Injection points", false)
		table := ui.NewTable(w, []string{"Kind", "Name", "Type", "Declared by"}, false)
		for _, ip := range a.InjectionPoints {
			typ := ""
			switch {
			case ip.Type != nil:
				typ = ip.Type.String()
			case len(ip.Parameters) > 0:
				typ = formatParams(ip.Parameters)
			}
			name := ip.Name
			if ip.FieldName != "" {
				name += " → " + ip.FieldName
			}
			if ip.Optional != nil && *ip.Optional {
				name += "?"
			}
			table.AddRow(ip.Kind, name, typ, ip.DeclaringType.String())
		}
		table.Render()
	}

	if len(a.ExecutableMethods) > 0 {
		fmt.Fprintln(w)
		ui.Header(w, "Executable methods", false)
		table := ui.NewTable(w, []string{"Handle", "Method", "Returns"}, false)
		for _, m := range a.ExecutableMethods {
			table.AddRow(m.Handle, m.Key, m.GenericReturnType.String())
		}
		table.Render()
	}

	for _, cb := range a.ConfigBuilders {
		fmt.Fprintln(w)
		ui.Header(w, fmt.Sprintf("Config builder %s %s (%s)", cb.Target, cb.TargetName, cb.Type), false)
		table := ui.NewTable(w, []string{"Property", "Method", "Form"}, false)
		for _, m := range cb.Methods {
			table.AddRow(m.ConfigurationPath, m.MethodName, m.Form)
		}
		table.Render()
	}
}

func renderMethod(w io.Writer, m metadata.ExecutableMethodMetadata) {
	table := ui.NewKeyValueTable(w, false)
	table.AddRow("Handle", m.Handle)
	table.AddRow("Index", strconv.Itoa(m.Index))
	table.AddRow("Key", m.Key)
	table.AddRow("Declared by", m.DeclaringType.String())
	table.AddRow("Returns", m.ReturnType.String())
	table.AddRow("Generic return", m.GenericReturnType.String())
	table.AddRow("Parameters", formatParams(m.Parameters))
	table.Render()
}

func formatParams(params []metadata.ParameterMetadata) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Type.String() + " " + p.Name
		if p.Qualifier != nil {
			parts[i] = "@" + p.Qualifier.String() + " " + parts[i]
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func joinRefs(refs []typeref.Ref) string {
	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = r.String()
	}
	return strings.Join(names, ", ")
}
