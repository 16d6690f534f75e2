package board

import "kanori/internal/service"

// Reorder returns a copy of tasks with task id moved into lane status at lane
// position index. The input slice is not modified.
//
// index counts only the tasks already in the target lane, excluding the moved
// task. Values <= 0 insert before the first lane member, values >= the lane
// size insert after the last one. Tasks outside the target lane keep their
// relative order. When the target lane is empty the task keeps its array
// position. ok is false when id is absent.
func Reorder(tasks []service.Task, id int64, status service.TaskStatus, index int) (out []service.Task, ok bool) {
	from := -1
	for i, t := range tasks {
		if t.ID == id {
			from = i
			break
		}
	}
	if from < 0 {
		return append([]service.Task(nil), tasks...), false
	}

	moved := tasks[from]
	moved.Status = status

	rest := make([]service.Task, 0, len(tasks))
	rest = append(rest, tasks[:from]...)
	rest = append(rest, tasks[from+1:]...)

	var lane []int
	for i, t := range rest {
		if t.Status == status {
			lane = append(lane, i)
		}
	}

	at := insertionPoint(lane, index, from)

	out = make([]service.Task, 0, len(tasks))
	out = append(out, rest[:at]...)
	out = append(out, moved)
	out = append(out, rest[at:]...)
	return out, true
}

// insertionPoint maps a lane position to an absolute index into the list
// without the moved task. lane holds the absolute indices of the lane members.
func insertionPoint(lane []int, index, fallback int) int {
	switch {
	case len(lane) == 0:
		return fallback
	case index <= 0:
		return lane[0]
	case index >= len(lane):
		return lane[len(lane)-1] + 1
	default:
		return lane[index]
	}
}

// Lane returns the tasks with the given status, in board order.
func Lane(tasks []service.Task, status service.TaskStatus) []service.Task {
	var out []service.Task
	for _, t := range tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}
