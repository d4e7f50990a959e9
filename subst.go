package compute

// Substitute instantiates template with bindings. A single-capture wildcard
// is replaced by its binding, or left as its literal token if unbound. A
// sequence wildcard in an operand list is replaced by splicing the bound run
// into the list; if unbound, its literal token remains, which marks an
// authoring error in the template. The result is not canonical.
func Substitute(template *Pattern, b Bindings) *Expr {
	e, _ := substitute(template, b)
	return e
}

// substitute also reports the tokens of unbound sequence wildcards.
func substitute(p *Pattern, b Bindings) (*Expr, []string) {
	var unbound []string
	var walk func(p *Pattern) *Expr
	walk = func(p *Pattern) *Expr {
		switch p.kind {
		case patLiteral:
			return p.lit
		case patWildcard:
			if v, ok := b[p.wc.Name]; ok && p.wc.Name != "" {
				return v
			}
			if p.wc.isSeq() {
				unbound = append(unbound, p.wc.Token())
			}
			return Sym(p.wc.Token())
		case patCompound:
			op := p.opName()
			if p.op.kind == patWildcard {
				if v, ok := b[p.op.wc.Name]; ok && v.kind == KindSymbol {
					op = v.name
				}
			}
			args := make([]*Expr, 0, len(p.args))
			for _, a := range p.args {
				if a.kind == patWildcard && a.wc.isSeq() {
					if v, ok := b[a.wc.Name]; ok && a.wc.Name != "" && v.Is(OpSequence) {
						args = append(args, v.args...)
						continue
					}
				}
				args = append(args, walk(a))
			}
			return call(op, args)
		case patDict:
			d := make(map[string]*Expr, len(p.dict))
			for k, v := range p.dict {
				d[k] = walk(v)
			}
			return Dict(d)
		default:
			panic("compute: invalid pattern")
		}
	}
	return walk(p), unbound
}
