package absint

// Combined is the product of Interval and Nullability; every lattice
// operation applies component-wise.
type Combined struct {
	Interval    Interval
	Nullability Nullability
}

func BottomCombined() Combined {
	return Combined{Interval: BottomInterval(), Nullability: NullBottom}
}

func TopCombined() Combined {
	return Combined{Interval: TopInterval(), Nullability: MaybeNull}
}

func (c Combined) IsBottom() bool {
	return c.Interval.IsBottom() && c.Nullability.IsBottom()
}

func (c Combined) IsTop() bool {
	return c.Interval.IsTop() && c.Nullability.IsTop()
}

func (c Combined) String() string {
	return c.Interval.String() + "×" + c.Nullability.String()
}

func asCombined(v Value) Combined {
	cv, ok := v.(Combined)
	if !ok {
		return BottomCombined()
	}
	return cv
}

func (c Combined) Join(other Value) Value {
	o := asCombined(other)
	return Combined{
		Interval:    c.Interval.Join(o.Interval).(Interval),
		Nullability: c.Nullability.Join(o.Nullability).(Nullability),
	}
}

func (c Combined) Meet(other Value) Value {
	o := asCombined(other)
	return Combined{
		Interval:    c.Interval.Meet(o.Interval).(Interval),
		Nullability: c.Nullability.Meet(o.Nullability).(Nullability),
	}
}

func (c Combined) Widen(other Value) Value {
	o := asCombined(other)
	return Combined{
		Interval:    c.Interval.Widen(o.Interval).(Interval),
		Nullability: c.Nullability.Widen(o.Nullability).(Nullability),
	}
}

func (c Combined) Narrow(other Value) Value {
	o := asCombined(other)
	return Combined{
		Interval:    c.Interval.Narrow(o.Interval).(Interval),
		Nullability: c.Nullability.Narrow(o.Nullability).(Nullability),
	}
}

func (c Combined) IsSubsetOf(other Value) bool {
	o := asCombined(other)
	return c.Interval.IsSubsetOf(o.Interval) && c.Nullability.IsSubsetOf(o.Nullability)
}
