package ecs_test

// Component payload types shared across the ecs_test suite: a single
// file of plain structs the other ecs_test files draw on.

type Position struct {
	X, Y float64
}

type Velocity struct {
	X, Y float64
}

type Health struct {
	Current, Max int
}

type Tag struct{}

type Name string

type Counter struct {
	N int
}
