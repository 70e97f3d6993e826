// Conformance model for the Auriga compiler
// A conformance is evidence that a concrete type satisfies a protocol. The
// ConformanceTable is the oracle used by the optimizer to gather the
// evidence needed when boxing a value into an existential.

package types

import "fmt"

// Conformance records that Concrete satisfies Protocol. Abstract
// conformances stand for evidence carried by a generic parameter or opened
// archetype whose constraint already guarantees the protocol.
type Conformance struct {
	Concrete Type
	Protocol *ProtocolType
	Abstract bool
	// Inherited marks evidence found on a superclass rather than on the
	// concrete class itself.
	Inherited bool
}

func (c Conformance) String() string {
	tag := ""
	if c.Abstract {
		tag = " (abstract)"
	} else if c.Inherited {
		tag = " (inherited)"
	}
	return fmt.Sprintf("%s: %s%s", c.Concrete, c.Protocol, tag)
}

// ConformanceTable records declared protocol conformances for nominal
// types. It is the conformance oracle of the optimization pipeline; test
// suites instantiate isolated tables per test case.
type ConformanceTable struct {
	declared map[string]map[string]bool // type name -> protocol name -> declared
}

// NewConformanceTable returns an empty table.
func NewConformanceTable() *ConformanceTable {
	return &ConformanceTable{declared: make(map[string]map[string]bool)}
}

// Register declares that the named nominal type conforms to proto.
func (ct *ConformanceTable) Register(concrete Type, proto *ProtocolType) {
	name := concrete.String()
	if ct.declared[name] == nil {
		ct.declared[name] = make(map[string]bool)
	}
	ct.declared[name][proto.Name] = true
}

// Conforms reports whether concrete satisfies proto, searching superclass
// chains for class types.
func (ct *ConformanceTable) Conforms(concrete Type, proto *ProtocolType) (found, inherited bool) {
	if ct.declared[concrete.String()][proto.Name] {
		return true, false
	}
	if cls, ok := concrete.(*ClassType); ok {
		for sup := cls.Superclass; sup != nil; sup = sup.Superclass {
			if ct.declared[sup.Name][proto.Name] {
				return true, true
			}
		}
	}
	return false, false
}

// CollectExistentialConformances gathers the conformance set required to
// box a value of type concrete as the given existential. Abstract subjects
// (generic parameters, opened archetypes) yield abstract conformances,
// since their constraint already carries the evidence. For concrete
// subjects the table is consulted, including superclass-inherited entries.
func (ct *ConformanceTable) CollectExistentialConformances(concrete Type, existential *ExistentialType) ([]Conformance, error) {
	protos := existential.Protocols()
	out := make([]Conformance, 0, len(protos))
	if IsAbstract(concrete) {
		for _, p := range protos {
			out = append(out, Conformance{Concrete: concrete, Protocol: p, Abstract: true})
		}
		return out, nil
	}
	for _, p := range protos {
		found, inherited := ct.Conforms(concrete, p)
		if !found {
			return nil, fmt.Errorf("type %s does not conform to %s", concrete, p.Name)
		}
		out = append(out, Conformance{Concrete: concrete, Protocol: p, Inherited: inherited})
	}
	if sup := existential.SuperclassConstraint(); sup != nil {
		cls, ok := concrete.(*ClassType)
		if !ok || !cls.IsSubclassOf(sup) {
			return nil, fmt.Errorf("type %s does not inherit from %s", concrete, sup.Name)
		}
	}
	return out, nil
}
