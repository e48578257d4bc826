// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/template"

	"github.com/urfave/cli/v3"

	"github.com/staranto/awsctlgo/internal/meta"
)

// completionService is the part of the command tree the scripts need.
type completionService struct {
	Name string
	Ops  []completionOp
}

type completionOp struct {
	Name  string
	Usage string
	Flags string
}

const bashCompletionScript = `# bash completion for awsctl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_awsctl()
{
    local cur prev svc op opts
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "{{range .}}{{.Name}} {{end}}completion --help --version" -- "$cur") )
        return 0
    fi

    svc=${COMP_WORDS[1]}
    if [[ ${COMP_CWORD} -eq 2 ]]; then
        case "$svc" in
{{- range .}}
        {{.Name}})
            COMPREPLY=( $(compgen -W "{{range .Ops}}{{.Name}} {{end}}" -- "$cur") )
            ;;
{{- end}}
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            ;;
        esac
        return 0
    fi

    case "$prev" in
    --output|-o)
        COMPREPLY=( $(compgen -W "text json yaml raw" -- "$cur") )
        return 0
        ;;
    --blob-file|--file|--policy-text|--lifecycle-policy-text|--image-manifest)
        COMPREPLY=( $(compgen -f -- "$cur") )
        return 0
        ;;
    esac

    op=${COMP_WORDS[2]}
    case "$svc $op" in
{{- range $svc := .}}{{range .Ops}}
    "{{$svc.Name}} {{.Name}}")
        opts="{{.Flags}}"
        ;;
{{- end}}{{end}}
    esac

    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
}

complete -F _awsctl awsctl
`

const zshCompletionScript = `#compdef awsctl

_awsctl() {
  local -a services ops flags

  if (( CURRENT == 2 )); then
    services=(
{{- range .}}
      '{{.Name}}:{{.Name}} operations'
{{- end}}
      'completion:generate shell completion script'
    )
    _describe -t commands 'awsctl services' services
    return
  fi

  if (( CURRENT == 3 )); then
    case $words[2] in
{{- range .}}
      {{.Name}})
        ops=(
{{- range .Ops}}
          '{{.Name}}:{{zquote .Usage}}'
{{- end}}
        )
        _describe -t commands '{{.Name}} operations' ops
        ;;
{{- end}}
      completion)
        _values 'shell' bash zsh
        ;;
    esac
    return
  fi

  case $words[CURRENT-1] in
    --output|-o)
      _values 'format' text json yaml raw
      return
      ;;
    --blob-file|--file)
      _files
      return
      ;;
  esac

  case "$words[2] $words[3]" in
{{- range $svc := .}}{{range .Ops}}
    "{{$svc.Name}} {{.Name}}")
      flags=({{.Flags}})
      ;;
{{- end}}{{end}}
  esac
  compadd -- $flags
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _awsctl awsctl
`

var completionTemplates = map[string]*template.Template{
	"bash": template.Must(template.New("bash").Parse(bashCompletionScript)),
	"zsh": template.Must(template.New("zsh").Funcs(template.FuncMap{
		"zquote": func(s string) string {
			return strings.NewReplacer("'", "'\\''", ":", "\\:").Replace(s)
		},
	}).Parse(zshCompletionScript)),
}

// completionTree collects services, operations and flag names from root.
func completionTree(root *cli.Command) []completionService {
	var services []completionService
	for _, svc := range root.Commands {
		if len(svc.Commands) == 0 {
			continue
		}
		cs := completionService{Name: svc.Name}
		for _, op := range svc.Commands {
			var names []string
			for _, f := range op.Flags {
				for _, n := range f.Names() {
					if len(n) == 1 {
						names = append(names, "-"+n)
					} else {
						names = append(names, "--"+n)
					}
				}
			}
			sort.Strings(names)
			cs.Ops = append(cs.Ops, completionOp{
				Name:  op.Name,
				Usage: op.Usage,
				Flags: strings.Join(names, " "),
			})
		}
		services = append(services, cs)
	}
	return services
}

// WriteCompletion renders the completion script for shell.
func WriteCompletion(w io.Writer, root *cli.Command, shell string) error {
	t, ok := completionTemplates[shell]
	if !ok {
		return fmt.Errorf("unsupported shell %q, use bash or zsh", shell)
	}
	return t.Execute(w, completionTree(root))
}

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	if shell == "" {
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			shell = "zsh"
		case strings.HasSuffix(sh, "bash"):
			shell = "bash"
		default:
			fmt.Fprintln(cmd.Root().ErrWriter, "usage: awsctl completion [bash|zsh]")
			return nil
		}
	}
	return WriteCompletion(cmd.Root().Writer, cmd.Root(), shell)
}

func CompletionCommandBuilder(m meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "awsctl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": m,
		},
		Action: CompletionCommandAction,
	}
}
