package model

type Model[T any] interface {
	DTO() *T
}

// Keyed is implemented by records stored under a string identifier.
type Keyed interface {
	Key() string
}

func DTOList[N Model[T], T any](l []N) []*T {
	res := make([]*T, len(l))

	for i, x := range l {
		res[i] = x.DTO()
	}

	return res
}
