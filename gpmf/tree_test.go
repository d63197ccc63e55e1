package gpmf

import "testing"

func TestProjectTree_SiblingOrderPreserved(t *testing.T) {
	strm1 := container("STRM", klvItem("ACCL", 'f', 4, 3, []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}))
	strm2 := container("STRM", klvItem("GYRO", 'f', 4, 3, []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}))
	strm3 := container("STRM", klvItem("GPS5", 'l', 4, 5, make([]byte, 20)))
	devc := container("DEVC", strm1, strm2, strm3)

	tree := ProjectTree(devc)
	devcNode := tree.GetFirst(keyDEVC)
	if devcNode == nil {
		t.Fatal("expected DEVC node")
	}
	strms := devcNode.Items(keySTRM)
	if len(strms) != 3 {
		t.Fatalf("expected 3 STRM siblings, got %d", len(strms))
	}
	// order of appearance: ACCL, GYRO, GPS5
	if strms[0].Get(fourCC("ACCL")) == nil {
		t.Error("expected first STRM to carry ACCL")
	}
	if strms[1].Get(fourCC("GYRO")) == nil {
		t.Error("expected second STRM to carry GYRO")
	}
	if strms[2].Get(keyGPS5) == nil {
		t.Error("expected third STRM to carry GPS5")
	}
}

func TestProjectTree_HeterogeneousSequence(t *testing.T) {
	// Same FourCC appears once as a leaf and once as a container.
	leaf := klvItem("MIXD", 'L', 4, 1, []byte{0, 0, 0, 1})
	branch := container("MIXD", klvItem("INNR", 'L', 4, 1, []byte{0, 0, 0, 2}))
	data := append(append([]byte{}, leaf...), branch...)

	tree := ProjectTree(data)
	seq := tree.Get(fourCC("MIXD"))
	if seq == nil || seq.Kind != NodeSequence {
		t.Fatalf("expected a sequence under MIXD, got %#v", seq)
	}
	if len(seq.Seq) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(seq.Seq))
	}
	if seq.Seq[0].Kind != NodeLeaf {
		t.Errorf("expected first entry to be a leaf")
	}
	if seq.Seq[1].Kind != NodeBranch {
		t.Errorf("expected second entry to be a branch")
	}
}

func TestProjectTree_EmptyContainerIsEmptySubtree(t *testing.T) {
	empty := klvItem("EMPT", 0x00, 0, 0, nil)
	tree := ProjectTree(empty)
	node := tree.GetFirst(fourCC("EMPT"))
	if node == nil {
		t.Fatal("expected a node under EMPT")
	}
	if node.Kind != NodeBranch {
		t.Errorf("expected empty container to project as a branch, got kind %v", node.Kind)
	}
	if len(node.Children) != 0 {
		t.Errorf("expected no children, got %d", len(node.Children))
	}
}

func TestProjectTree_UnknownTypeSkippedButSurvives(t *testing.T) {
	before := klvItem("BFOR", 'L', 4, 1, []byte{0, 0, 0, 1})
	unknown := klvItem("UNKN", '!', 4, 1, []byte{1, 2, 3, 4})
	after := klvItem("AFTR", 'L', 4, 1, []byte{0, 0, 0, 2})
	data := append(append(append([]byte{}, before...), unknown...), after...)

	tree := ProjectTree(data)
	if tree.GetFirst(fourCC("BFOR")) == nil || tree.GetFirst(fourCC("AFTR")) == nil {
		t.Fatal("expected surrounding items to decode correctly")
	}
	unk := tree.GetFirst(fourCC("UNKN"))
	if unk == nil || unk.Kind != NodeLeaf {
		t.Fatal("expected unknown-type item to be retained as a leaf")
	}
	if got := unk.Item.Int32s(); got != nil {
		t.Errorf("expected nil numeric decode for unknown type, got %v", got)
	}
	after1 := tree.GetFirst(fourCC("AFTR")).Item.Uint32s()
	if len(after1) != 1 || after1[0] != 2 {
		t.Errorf("item following the unknown type decoded wrong: %v", after1)
	}
}

func TestProjectTreeStrict_DepthLimit(t *testing.T) {
	// Build a container nested far deeper than defaultMaxDepth.
	leaf := klvItem("LEAF", 'L', 4, 1, []byte{0, 0, 0, 1})
	data := leaf
	for i := 0; i < defaultMaxDepth+5; i++ {
		data = container("NEST", data)
	}

	if _, err := ProjectTreeStrict(data); err == nil {
		t.Error("expected MalformedInputError for over-deep nesting")
	}

	// Permissive variant must not panic or error, even if truncated.
	_ = ProjectTree(data)
}
