package engine

// executionGroup — одна последовательно запускаемая партия шагов.
// Шаги внутри партии выполняются одновременно.
type executionGroup struct {
	// key — ключ группы: ParallelGroup или имя шага-одиночки.
	key string

	// members — шаги группы в порядке регистрации.
	members []*StepDeclaration
}

// buildGroups разбивает декларации на группы выполнения.
//
// Шаги с одинаковым ParallelGroup попадают в одну группу; шаг без
// группы образует собственную группу из одного элемента. Порядок
// групп — порядок первого появления ключа, порядок шагов внутри
// группы — порядок регистрации. Группы вычисляются на каждый запуск
// заново и нигде не сохраняются.
func buildGroups(decls []*StepDeclaration) []executionGroup {
	groups := make([]executionGroup, 0, len(decls))
	index := make(map[string]int, len(decls))

	for _, d := range decls {
		key := d.groupKey()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, executionGroup{key: key})
		}
		groups[i].members = append(groups[i].members, d)
	}

	return groups
}
