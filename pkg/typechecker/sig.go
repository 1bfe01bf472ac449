package typechecker

// matchSignatures pairs a signature's parameter slots with the argument
// slots of one call, including arguments already accumulated by partial
// application. Positionals zip in order, with both sides cycling their rest
// slot when their finite slots run out; named slots pair by the sorted
// intersection of the signature's field index with each argument set's,
// chained partial applications included.
//
// withs holds the partially-applied argument packs in application order;
// they are consumed in reverse so the last application binds the first
// parameters, and their named slots pair most-recently-applied first.
// visit sees each (parameter, argument) pair in positional order, named
// pairs after.
func matchSignatures(sig, args *SigTy, withs []*SigTy, visit func(param, arg Type)) {
	if sig == nil || args == nil {
		return
	}
	sigRest, _ := sig.Rest()
	argRest, _ := args.Rest()

	withLen := 0
	for _, w := range withs {
		withLen += w.NameStart
	}

	// One extra paired slot only when both sides cycle, so rest meets rest
	// exactly once.
	maxLen := max(sig.NameStart, withLen+args.NameStart)
	if sigRest != nil && argRest != nil {
		maxLen++
	}

	sigAt := func(i int) (Type, bool) {
		if i < sig.NameStart {
			return sig.Inputs[i], true
		}
		if sigRest != nil {
			return sigRest, true
		}
		return nil, false
	}
	argAt := func(i int) (Type, bool) {
		for w := len(withs) - 1; w >= 0; w-- {
			n := withs[w].NameStart
			if i < n {
				return withs[w].Inputs[i], true
			}
			i -= n
		}
		if i < args.NameStart {
			return args.Inputs[i], true
		}
		if argRest != nil {
			return argRest, true
		}
		return nil, false
	}

	for i := 0; i < maxLen; i++ {
		p, okP := sigAt(i)
		a, okA := argAt(i)
		if !okP || !okA {
			break
		}
		visit(p, a)
	}

	for w := len(withs) - 1; w >= 0; w-- {
		pack := withs[w]
		intersectIndex(sig.Names, pack.Names, func(i, j int) {
			visit(sig.namedTypeAt(i), pack.namedTypeAt(j))
		})
	}
	intersectIndex(sig.Names, args.Names, func(i, j int) {
		visit(sig.namedTypeAt(i), args.namedTypeAt(j))
	})
}

// intersectIndex walks two sorted name indexes and visits the offsets of
// every name present in both. Offsets arrive in strictly increasing order
// on both sides.
func intersectIndex(a, b []string, visit func(i, j int)) {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			visit(i, j)
			i++
			j++
		}
	}
}
