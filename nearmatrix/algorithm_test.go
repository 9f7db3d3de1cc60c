package nearmatrix

import (
	"context"
	"errors"
	"testing"

	"github.com/wgdzlh/gdalref/feature"
	"github.com/wgdzlh/gdalref/process"

	"github.com/twpayne/go-geom"

	. "github.com/smartystreets/goconvey/convey"
)

var utm = feature.CRS{Srid: 32650, Units: feature.UnitMeters}

func points(name, field string, crs feature.CRS, xy ...float64) *feature.Layer {
	l := &feature.Layer{
		Name:     name,
		CRS:      crs,
		GeomType: feature.GeomPoint,
		Fields:   []feature.Field{{Name: field, Type: feature.FieldString}},
	}
	for i := 0; i+1 < len(xy); i += 2 {
		fid := int64(len(l.Features) + 1)
		g := geom.NewPointFlat(geom.XY, []float64{xy[i], xy[i+1]})
		l.Features = append(l.Features, feature.NewFeature(fid, g, map[string]any{field: name + string(rune('a'+fid-1))}))
	}
	return l
}

func params(in, near *feature.Layer, inField, nearField string) process.Params {
	return process.Params{
		process.ParamInput:      in,
		process.ParamNear:       near,
		process.ParamInputField: inField,
		process.ParamNearField:  nearField,
	}
}

func features(st *Stats) []*feature.Feature {
	fs, _ := st.Output.(*feature.MemorySink).Features()
	return fs
}

func TestNearMatrix(t *testing.T) {
	Convey("Given two point layers", t, func() {
		in := points("in", "name", utm, 0, 0, 10, 0)
		near := points("near", "label", utm, 3, 4, 10, 10, 20, 0)
		fb := &process.RecordingFeedback{}

		Convey("every input pairs with every near feature", func() {
			st, err := New(nil).Execute(context.Background(), params(in, near, "name", "label"), fb)
			So(err, ShouldBeNil)
			So(st.Pairs, ShouldEqual, 6)
			fs := features(st)
			So(fs, ShouldHaveLength, 6)

			first := fs[0]
			So(first.FID, ShouldEqual, int64(1))
			So(first.Attributes["name"], ShouldEqual, "ina")
			So(first.Attributes["label"], ShouldEqual, "neara")
			So(first.Attributes[FieldDistance], ShouldEqual, 5.0)
			So(first.Geometry.FlatCoords(), ShouldResemble, []float64{0, 0, 3, 4})

			last := fs[5]
			So(last.Attributes["name"], ShouldEqual, "inb")
			So(last.Attributes["label"], ShouldEqual, "nearc")
			So(last.Attributes[FieldDistance], ShouldEqual, 10.0)
		})

		Convey("progress follows the input features", func() {
			_, err := New(nil).Execute(context.Background(), params(in, near, "name", "label"), fb)
			So(err, ShouldBeNil)
			So(fb.Progress, ShouldResemble, []float64{50, 100})
		})

		Convey("an empty near layer gives no records", func() {
			empty := points("near", "label", utm)
			st, err := New(nil).Execute(context.Background(), params(in, empty, "name", "label"), fb)
			So(err, ShouldBeNil)
			So(st.Pairs, ShouldEqual, 0)
			So(features(st), ShouldBeEmpty)
		})

		Convey("an empty input layer gives no records", func() {
			empty := points("in", "name", utm)
			st, err := New(nil).Execute(context.Background(), params(empty, near, "name", "label"), fb)
			So(err, ShouldBeNil)
			So(features(st), ShouldBeEmpty)
			So(fb.Progress, ShouldBeEmpty)
		})

		Convey("a colliding near field is renamed", func() {
			same := points("near", "name", utm, 1, 1)
			st, err := New(nil).Execute(context.Background(), params(in, same, "name", "name"), fb)
			So(err, ShouldBeNil)
			So(st.OutputSchema.FieldIndex("name_"), ShouldEqual, 1)
			fs := features(st)
			So(fs[0].Attributes["name"], ShouldEqual, "ina")
			So(fs[0].Attributes["name_"], ShouldEqual, "neara")
		})

		Convey("a missing geometry gives distance -1", func() {
			near.Features[0].Geometry = nil
			st, err := New(nil).Execute(context.Background(), params(in, near, "name", "label"), fb)
			So(err, ShouldBeNil)
			So(st.EmptyPairs, ShouldEqual, 2)
			fs := features(st)
			So(fs[0].Attributes[FieldDistance], ShouldEqual, EmptyDistance)
			So(fs[0].Geometry.FlatCoords(), ShouldBeEmpty)
			So(fb.Debugs, ShouldHaveLength, 3)
		})

		Convey("the feature counts are logged before pairing", func() {
			_, err := New(nil).Execute(context.Background(), params(in, near, "name", "label"), fb)
			So(err, ShouldBeNil)
			So(fb.Debugs, ShouldHaveLength, 1)
			So(fb.Debugs[0], ShouldEqual, "Input Count: 2, Near Count: 3")
		})

		Convey("a canceled run writes nothing", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			st, err := New(nil).Execute(ctx, params(in, near, "name", "label"), fb)
			So(err, ShouldBeNil)
			So(st.Canceled, ShouldBeTrue)
			So(features(st), ShouldBeEmpty)
		})

		Convey("a missing field fails validation", func() {
			_, err := New(nil).Validate(params(in, near, "name", "nope"))
			So(errors.Is(err, ErrFieldMissing), ShouldBeTrue)
			_, err = New(nil).Validate(params(in, near, "", "label"))
			So(errors.Is(err, process.ErrMissingParam), ShouldBeTrue)
		})
	})

	Convey("Given a near layer in another CRS", t, func() {
		in := points("in", "name", utm, 0, 0)
		other := feature.CRS{Srid: 3857, Units: feature.UnitMeters}
		near := points("near", "label", other, 100, 200)

		Convey("it is reprojected to the input CRS", func() {
			svc := process.NewMemoryServices()
			svc.AddTransform(3857, 32650, func(c geom.Coord) geom.Coord {
				return geom.Coord{c.X() / 100, c.Y() / 100}
			})
			st, err := New(svc).Execute(context.Background(), params(in, near, "name", "label"), &process.RecordingFeedback{})
			So(err, ShouldBeNil)
			So(st.Reprojected, ShouldBeTrue)
			So(st.OutputSchema.CRS, ShouldResemble, utm)
			So(features(st)[0].Attributes[FieldDistance], ShouldAlmostEqual, 2.2360679, 1e-6)
		})

		Convey("without services the run fails", func() {
			_, err := New(nil).Execute(context.Background(), params(in, near, "name", "label"), &process.RecordingFeedback{})
			So(errors.Is(err, process.ErrNoReprojection), ShouldBeTrue)
		})
	})
}
