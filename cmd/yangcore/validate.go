package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yangcore/yangcore/diag"
	"github.com/yangcore/yangcore/schema"
)

// newValidateCmd builds "yangcore validate MODULE [MODULE...]": loads each
// named module's already-resolved schema graph and reports worklist
// diagnostics for anything left unresolved after a Resolver pass.
func newValidateCmd(searchPaths *[]string, logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use: "validate MODULE [MODULE...]",
		Short: "resolve and validate one or more already-loaded modules",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, dg := schema.NewContext(schema.Options{SearchDirs: *searchPaths, LogLevel: parseLogLevel(*logLevel)})
			if dg != nil {
				return dg
			}
			worklist := schema.NewSchemaWorklist(ctx)
			for _, name := range args {
				m := ctx.GetModule(name, "")
				if m == nil {
					return fmt.Errorf("yangcore: module %q not loaded", name)
				}
				enqueueModule(worklist, m)
			}
			diags := worklist.Run()
			if len(diags) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "ok: %d module(s) fully resolved\n", len(args))
				return nil
			}
			for _, d := range diags {
				fmt.Fprintln(cmd.ErrOrStderr(), d.Error())
			}
			return fmt.Errorf("yangcore: %d unresolved reference(s)", len(diags))
		},
	}
}

// enqueueModule walks m's schema tree registering the pending items a real
// parser front-end would have attached per node. Here it conservatively
// re-derives that registration from whatever facets are already populated,
// since this binary has no textual front end of its own, then registers m
// so the worklist's final deviation phase picks it up too.
func enqueueModule(w *schema.SchemaWorklist, m *schema.Module) {
	opt := schema.WithGrouping | schema.WithCase | schema.WithChoice | schema.WithInputOutput
	walkAll := func(roots []*schema.SchemaNode, fn func(*schema.SchemaNode) bool) {
		for _, n := range roots {
			schema.Walk(n, opt, fn)
		}
	}
	visit := func(node *schema.SchemaNode) bool {
		switch node.Kind {
		case schema.KindUses:
			site := node
			w.Add(&schema.UnresSchemaItem{
				Kind: schema.UnresUses,
				Node: site,
				Module: m,
				Resolve: func(r *schema.Resolver, hide bool) *diag.Diagnostic {
					if site.UsesInfo.Grouping == nil {
						g := m.FindGrouping(site.UsesInfo.GroupingName)
						if g == nil {
							return diag.New(diag.Validation, diag.VecodeNoResolv, "grouping %q not found", site.UsesInfo.GroupingName)
						}
						site.UsesInfo.Grouping = g.Node
					}
					return r.ResolveUses(site)
				},
			})
		case schema.KindAugment:
			aug := node
			w.Add(&schema.UnresSchemaItem{
				Kind: schema.UnresAugment,
				Node: aug,
				Module: m,
				Resolve: func(r *schema.Resolver, hide bool) *diag.Diagnostic {
					return r.ResolveAugment(aug, m)
				},
			})
		case schema.KindList:
			list := node
			if len(list.KeyNames) > 0 {
				w.Add(&schema.UnresSchemaItem{
					Kind: schema.UnresListKeys,
					Node: list,
					Module: m,
					Resolve: func(r *schema.Resolver, hide bool) *diag.Diagnostic {
						return r.ValidateListKeys(list)
					},
				})
			}
			if len(list.Unique) > 0 {
				w.Add(&schema.UnresSchemaItem{
					Kind: schema.UnresListUnique,
					Node: list,
					Module: m,
					Resolve: func(r *schema.Resolver, hide bool) *diag.Diagnostic {
						return r.ValidateUnique(list)
					},
				})
			}
		case schema.KindChoice:
			choice := node
			if choice.Default != "" {
				w.Add(&schema.UnresSchemaItem{
					Kind: schema.UnresChoiceDefault,
					Node: choice,
					Module: m,
					Resolve: func(r *schema.Resolver, hide bool) *diag.Diagnostic {
						return r.ResolveChoiceDefault(choice)
					},
				})
			}
		}
		if len(node.IfFeatures) > 0 {
			n := node
			w.Add(&schema.UnresSchemaItem{
				Kind: schema.UnresIfFeature,
				Node: n,
				Module: m,
				Resolve: func(r *schema.Resolver, hide bool) *diag.Diagnostic {
					return r.ResolveNodeIfFeature(n)
				},
			})
		}
		if node.Kind == schema.KindLeaf || node.Kind == schema.KindLeafList {
			enqueueType(w, m, node, node.Type)
			if node.Default != "" {
				n := node
				w.Add(&schema.UnresSchemaItem{
					Kind: schema.UnresTypeDefault,
					Node: n,
					Module: m,
					Resolve: func(r *schema.Resolver, hide bool) *diag.Diagnostic {
						return r.ResolveTypeDefault(n)
					},
				})
			}
		}
		return true
	}
	walkAll(m.DataNodes, visit)
	walkAll(m.RPCs, visit)
	walkAll(m.Notifs, visit)

	for _, id := range m.Identities {
		identity := id
		if identity.BaseName == "" {
			continue
		}
		w.Add(&schema.UnresSchemaItem{
			Kind: schema.UnresIdentityBase,
			Module: m,
			Resolve: func(r *schema.Resolver, hide bool) *diag.Diagnostic {
				return r.ResolveIdentityBase(identity, schema.IdentityLookup(m))
			},
		})
	}
	for _, f := range m.Features {
		feat := f
		w.Add(&schema.UnresSchemaItem{
			Kind: schema.UnresIfFeature,
			Module: m,
			Resolve: func(r *schema.Resolver, hide bool) *diag.Diagnostic {
				return r.ResolveFeatureEnable(feat)
			},
		})
	}
	for _, td := range m.Typedefs {
		typedef := td
		if typedef.BaseTypeName != "" {
			w.Add(&schema.UnresSchemaItem{
				Kind: schema.UnresTypeDer,
				Module: m,
				Resolve: func(r *schema.Resolver, hide bool) *diag.Diagnostic {
					return r.ResolveTypedefChain(typedef, m)
				},
			})
		}
		enqueueType(w, m, nil, typedef.Type)
	}

	w.RegisterModule(m)
}

// enqueueType registers the type-facet resolution items (derivation,
// leafref, identityref) for t and, recursively, each of its union members.
// node is nil when t belongs to a typedef rather than a leaf/leaf-list.
func enqueueType(w *schema.SchemaWorklist, m *schema.Module, node *schema.SchemaNode, t *schema.Type) {
	if t == nil {
		return
	}
	typ := t
	w.Add(&schema.UnresSchemaItem{
		Kind: schema.UnresTypeDer,
		Node: node,
		Module: m,
		Resolve: func(r *schema.Resolver, hide bool) *diag.Diagnostic {
			return r.ResolveTypeDer(typ, m)
		},
	})
	if typ.IdentityBaseName != "" {
		w.Add(&schema.UnresSchemaItem{
			Kind: schema.UnresTypeIdentref,
			Node: node,
			Module: m,
			Resolve: func(r *schema.Resolver, hide bool) *diag.Diagnostic {
				return r.ResolveTypeIdentref(typ, m)
			},
		})
	}
	if node != nil && typ.LeafrefPath != "" {
		from := node
		w.Add(&schema.UnresSchemaItem{
			Kind: schema.UnresTypeLeafref,
			Node: node,
			Module: m,
			Resolve: func(r *schema.Resolver, hide bool) *diag.Diagnostic {
				return r.ResolveLeafref(typ, from)
			},
		})
	}
	for _, member := range typ.Union {
		enqueueType(w, m, node, member)
	}
}
