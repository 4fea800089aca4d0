package scheduler

import "slices"

// 每 primaryPerOther 个 M 类球员至少要有一个 O 类球员
const primaryPerOther = 3

// renderBattingOrder 将两个类别的击球顺序交错合并，O 类球员尽量均匀地分布在 M 类球员之间
// O 类球员不足时用 fillerHandle 补足，若最后一棒是占位球员则去掉
// 不会修改传入的切片
func renderBattingOrder(primary, other []int) []int {
	required := (len(primary) + primaryPerOther - 1) / primaryPerOther

	padded := make([]int, len(other), max(len(other), required))
	copy(padded, other)
	for len(padded) < required {
		padded = append(padded, fillerHandle)
	}

	gapCount := len(padded)
	if gapCount == 0 {
		// 两个类别都没有球员
		return slices.Clone(primary)
	}

	base := len(primary) / gapCount
	extra := len(primary) % gapCount

	order := make([]int, 0, len(primary)+gapCount)
	next := 0
	for i := 0; i < gapCount; i++ {
		count := base
		if i < extra {
			count++
		}
		order = append(order, primary[next:next+count]...)
		next += count
		order = append(order, padded[i])
	}

	if order[len(order)-1] == fillerHandle {
		order = order[:len(order)-1]
	}

	return order
}
