package compiler

import "runa/pkg/ast"

// unreachableProcesses returns the process definitions that no top-level
// statement reaches, directly or through other processes. A process is
// reached when it is called or referenced by name, for example as a
// pipeline stage or a Map function.
func unreachableProcesses(stmts []ast.Stmt) []ast.Stmt {
	// 1. Map every process declaration by name
	procs := make(map[string][]ast.Stmt)
	var order []ast.Stmt
	for _, s := range stmts {
		ast.Inspect(s, func(n ast.Node) bool {
			if name, _, ok := processOf(n); ok {
				procs[name] = append(procs[name], n.(ast.Stmt))
				order = append(order, n.(ast.Stmt))
			}
			return true
		})
	}
	if len(procs) == 0 {
		return nil
	}

	reachable := make(map[string]bool)
	var worklist []string
	addReachable := func(name string) {
		if _, ok := procs[name]; ok && !reachable[name] {
			reachable[name] = true
			worklist = append(worklist, name)
		}
	}

	// 2. Roots are the names mentioned outside any process body
	for _, s := range stmts {
		if _, _, ok := processOf(s); ok {
			continue
		}
		for name := range referencedNames(s) {
			addReachable(name)
		}
	}

	// 3. Walk the worklist for transitively reachable processes
	for len(worklist) > 0 {
		curr := worklist[0]
		worklist = worklist[1:]
		for _, def := range procs[curr] {
			_, body, _ := processOf(def)
			for _, child := range body {
				for name := range referencedNames(child) {
					addReachable(name)
				}
			}
		}
	}

	var dead []ast.Stmt
	for _, def := range order {
		name, _, _ := processOf(def)
		if !reachable[name] {
			dead = append(dead, def)
		}
	}
	return dead
}

func processOf(n ast.Node) (string, []ast.Stmt, bool) {
	switch p := n.(type) {
	case *ast.ProcessDefinition:
		return p.Name, p.Body, true
	case *ast.TypedProcessDefinition:
		return p.Name, p.Body, true
	}
	return "", nil, false
}

// referencedNames collects called and referenced names under n. Nested
// process bodies are skipped; they are reached through their own name.
func referencedNames(n ast.Node) map[string]bool {
	names := make(map[string]bool)
	ast.Inspect(n, func(n ast.Node) bool {
		switch x := n.(type) {
		case *ast.ProcessDefinition, *ast.TypedProcessDefinition:
			return false
		case *ast.FunctionCall:
			names[x.Name] = true
		case *ast.VariableReference:
			names[x.Name] = true
		}
		return true
	})
	return names
}
