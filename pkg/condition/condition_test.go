package condition

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/jwebster45206/life-engine/pkg/attr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockView implements View for testing
type mockView struct {
	ints map[attr.Key]int
	sets map[attr.Key]map[int]bool
}

func (m *mockView) Int(key attr.Key) int { return m.ints[key] }
func (m *mockView) Contains(key attr.Key, id int) bool {
	return m.sets[key][id]
}

func view(ints map[attr.Key]int, sets map[attr.Key][]int) *mockView {
	v := &mockView{ints: ints, sets: map[attr.Key]map[int]bool{}}
	for k, ids := range sets {
		v.sets[k] = map[int]bool{}
		for _, id := range ids {
			v.sets[k][id] = true
		}
	}
	return v
}

func TestCompile_Evaluate(t *testing.T) {
	state := view(
		map[attr.Key]int{attr.AGE: 18, attr.INT: 7, attr.STR: 2, attr.MNY: -3, attr.SPR: 5},
		map[attr.Key][]int{
			attr.TLT: {1001, 1004},
			attr.EVT: {10001, 10002},
			attr.AVT: {10001, 10002, 10050},
		},
	)

	tests := []struct {
		condition string
		expected  bool
	}{
		{"INT>=5", true},
		{"INT>=8", false},
		{"INT>7", false},
		{"INT<8", true},
		{"INT<=7", true},
		{"INT==7", true},
		{"INT=7", true},
		{"INT!=7", false},
		{"MNY<0", true},
		{"MNY>-4", true},
		{"MNY==-3", true},
		{"AGE >= 18", true},
		{"STR?[1,2,3]", true},
		{"STR?[4]", false},
		{"STR![1,2,3]", false},
		{"STR![4,5]", true},
		{"EVT?[10002]", true},
		{"EVT?[99999,10001]", true},
		{"EVT?[99999]", false},
		{"EVT![99999]", true},
		{"EVT![10001,99999]", false},
		{"AVT?[10050]", true},
		{"AEVT?[10050]", true},
		{"AEVT![10050]", false},
		{"TLT?[1004]", true},
		{"TLT![1002,1003]", true},
		{"INT<5|STR<5", true},
		{"INT<5|STR>5", false},
		{"INT<5|STR>5|EVT?[10001]", true},
		{" INT < 5 | EVT ? [ 10001 , 3 ] ", true},
		{"LIF<1", true},
	}

	for _, tt := range tests {
		t.Run(tt.condition, func(t *testing.T) {
			pred, err := Compile(tt.condition)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, pred(state))
		})
	}
}

func TestCompile_IntelligenceExample(t *testing.T) {
	pred := MustCompile("INT>=5")

	if !pred(view(map[attr.Key]int{attr.INT: 7}, nil)) {
		t.Error("expected INT>=5 to hold for INT=7")
	}
	if pred(view(map[attr.Key]int{attr.INT: 4}, nil)) {
		t.Error("expected INT>=5 to fail for INT=4")
	}
}

func TestCompile_Malformed(t *testing.T) {
	tests := []struct {
		name      string
		condition string
		offset    int
		reason    string
	}{
		{"empty", "", 0, "empty condition"},
		{"blank", "   ", 0, "empty condition"},
		{"unknown attribute", "FOO>1", 0, `unknown attribute "FOO"`},
		{"long key", "AGEX>1", 0, `unknown attribute "AGEX"`},
		{"lowercase", "age>1", 0, "unexpected character 'a'"},
		{"derived key", "SUM>10", 0, `derived attribute "SUM" cannot be used in a condition`},
		{"marker key", "RDM>1", 0, `marker attribute "RDM" cannot be used in a condition`},
		{"missing value", "AGE>", 4, "expected integer after \">\", found end of condition"},
		{"missing operator", "AGE 5", 4, "expected operator after \"AGE\", found integer"},
		{"compare on set", "EVT>3", 3, `operator ">" needs a numeric attribute, "EVT" is a set`},
		{"unbalanced list", "EVT?[10001,10002", 4, "unbalanced '['"},
		{"unbalanced after value", "EVT?[10001", 4, "unbalanced '['"},
		{"empty list", "EVT?[]", 5, "empty list"},
		{"missing bracket", "EVT?10001", 4, "expected '[' after \"?\""},
		{"trailing comma", "EVT?[1,]", 7, "expected integer in list, found ']'"},
		{"dangling or", "AGE>1|", 6, "expected attribute key, found end of condition"},
		{"leading or", "|AGE>1", 0, "expected attribute key, found '|'"},
		{"and is not supported", "AGE>1&INT>2", 5, "unexpected character '&'"},
		{"parentheses are not supported", "(AGE>1)", 0, "unexpected character '('"},
		{"trailing tokens", "AGE>1 INT>2", 6, "unexpected attribute key \"INT\" after term"},
		{"extra bracket", "EVT?[1]]", 7, "unexpected ']' \"]\" after term"},
		{"lone minus", "AGE>-", 4, "'-' must be followed by a digit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred, err := Compile(tt.condition)
			require.Error(t, err)
			assert.Nil(t, pred)
			assert.True(t, errors.Is(err, ErrMalformedCondition))

			var condErr *Error
			require.True(t, errors.As(err, &condErr))
			assert.Equal(t, tt.condition, condErr.Condition)
			assert.Equal(t, tt.offset, condErr.Offset)
			assert.Equal(t, tt.reason, condErr.Reason)
		})
	}
}

func TestCompile_ShortCircuits(t *testing.T) {
	calls := 0
	counting := &countingView{inner: view(map[attr.Key]int{attr.AGE: 3}, nil), calls: &calls}

	pred := MustCompile("AGE==3|INT>100|STR>100")
	if !pred(counting) {
		t.Fatal("expected predicate to hold")
	}
	if calls != 1 {
		t.Errorf("expected evaluation to stop after first term, got %d reads", calls)
	}
}

type countingView struct {
	inner View
	calls *int
}

func (c *countingView) Int(key attr.Key) int {
	*c.calls++
	return c.inner.Int(key)
}

func (c *countingView) Contains(key attr.Key, id int) bool {
	*c.calls++
	return c.inner.Contains(key, id)
}

func TestCache_ReusesPredicates(t *testing.T) {
	cache := NewCache()

	first, err := cache.Compile("AGE>1")
	require.NoError(t, err)
	_, err = cache.Compile("AGE>1")
	require.NoError(t, err)
	_, err = cache.Compile("INT>1")
	require.NoError(t, err)

	assert.Equal(t, 2, cache.Len())
	assert.True(t, first(view(map[attr.Key]int{attr.AGE: 2}, nil)))

	_, err = cache.Compile("AGE>")
	assert.ErrorIs(t, err, ErrMalformedCondition)
	assert.Equal(t, 2, cache.Len(), "failed compilations should not be cached")
}

func TestCache_ConcurrentAccess(t *testing.T) {
	cache := NewCache()
	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				pred, err := cache.Compile(fmt.Sprintf("AGE>=%d", j%10))
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				pred(view(map[attr.Key]int{attr.AGE: i}, nil))
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, cache.Len())
}
