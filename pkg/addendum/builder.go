package addendum

// buildLocked resolves and constructs every declaration of doc for target.
//
// All tags are resolved before anything is constructed, so a resolution
// failure leaves no partially built collection behind. A non-empty
// restriction skips declarations whose type does not extend it.
func (e *Engine) buildLocked(target Target, doc, restriction string) (*Collection, error) {
	entries, err := e.entriesLocked(target, doc)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(entries))
	for i, entry := range entries {
		if names[i], err = e.resolveLocked(entry.Tag); err != nil {
			return nil, err
		}
	}

	var restrictTo string
	if restriction != "" {
		if restrictTo, err = e.resolveLocked(restriction); err != nil {
			return nil, err
		}
	}

	annotations := newCollection(target, e.resolveLocked)
	for i, entry := range entries {
		name := names[i]
		if restrictTo != "" && !e.registry.IsSubtype(name, restrictTo) {
			continue
		}
		if _, skip := e.ignored[name]; skip && name != BaseType {
			e.logger.Debug().Str("type", name).Str("target", target.QualifiedName()).Msg("ignored annotation skipped")
			continue
		}

		inst, err := e.constructLocked(name, entry.Params, target)
		if err != nil {
			return nil, err
		}
		annotations.add(inst)
	}
	return annotations, nil
}

// constructLocked builds one instance of the type called name for target
func (e *Engine) constructLocked(name string, params []Param, target Target) (*Instance, error) {
	typ, ok := e.registry.Lookup(name)
	if !ok {
		return nil, &UnknownTypeError{Name: name}
	}

	if err := e.guard.push(name); err != nil {
		return nil, err
	}
	defer e.guard.pop(name)

	e.logger.Debug().Str("type", name).Stringer("target", target).Msg("constructing annotation")

	inst := newInstance(typ, target)
	var positional []interface{}
	for _, param := range params {
		value, err := e.valueLocked(param.Value)
		if err != nil {
			return nil, err
		}
		if param.Positional() {
			positional = append(positional, value)
			continue
		}
		if !typ.HasProperty(param.Key) {
			return nil, &InvalidPropertyError{Type: name, Property: param.Key}
		}
		if err := inst.set(param.Key, value); err != nil {
			return nil, err
		}
	}

	switch len(positional) {
	case 0:
	case 1:
		if err := inst.set(ValueProperty, positional[0]); err != nil {
			return nil, err
		}
	default:
		if err := inst.set(ValueProperty, positional); err != nil {
			return nil, err
		}
	}

	if err := e.checkTargetLocked(typ, target); err != nil {
		e.logger.Debug().Err(err).Str("type", name).Msg("annotation rejected")
		return nil, err
	}
	if typ.check != nil {
		if err := typ.check(inst, target); err != nil {
			return nil, &ConstraintError{Type: name, Target: target.QualifiedName(), Err: err}
		}
	}

	e.metrics.constructed()
	return inst, nil
}

// valueLocked turns a parsed parameter value into a bound value. Nested
// declarations are constructed recursively with the nested target.
func (e *Engine) valueLocked(v Value) (interface{}, error) {
	switch v.Kind {
	case ListValue:
		out := make([]interface{}, 0, len(v.List))
		for _, item := range v.List {
			value, err := e.valueLocked(item)
			if err != nil {
				return nil, err
			}
			out = append(out, value)
		}
		return out, nil
	case NestedValue:
		if v.Nested == nil {
			return nil, nil
		}
		name, err := e.resolveLocked(v.Nested.Tag)
		if err != nil {
			return nil, err
		}
		return e.constructLocked(name, v.Nested.Params, Nested())
	default:
		return v.Literal, nil
	}
}

// checkTargetLocked enforces the placements allowed by the last Target
// meta-annotation of typ. A type without one may be placed anywhere.
func (e *Engine) checkTargetLocked(typ *Type, target Target) error {
	meta, err := e.classAnnotationsLocked(typ.name)
	if err != nil {
		return err
	}
	restriction := meta.lastSubtypeOf(e.registry, TargetType)
	if restriction == nil {
		return nil
	}

	keywords, err := placementKeywords(restriction.Value())
	if err != nil {
		return &ConstraintError{Type: typ.name, Target: target.QualifiedName(), Err: err}
	}
	for _, keyword := range keywords {
		if e.allows(keyword, target) {
			return nil
		}
	}

	if target.Kind == NestedTarget {
		return &NoNestingAllowedError{Type: typ.name}
	}
	return &NestingNotAllowedError{Type: typ.name, Target: target.QualifiedName()}
}

func (e *Engine) allows(keyword string, target Target) bool {
	switch keyword {
	case PlaceClass:
		return target.Kind == ClassTarget
	case PlaceMethod:
		return target.Kind == MethodTarget
	case PlaceProperty:
		return target.Kind == PropertyTarget
	case PlaceMeta:
		return target.Kind == ClassTarget && e.registry.IsAnnotation(target.Class)
	case PlaceNested:
		return target.Kind == NestedTarget
	default:
		return false
	}
}
