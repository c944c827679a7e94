package store

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/cyraxred/labelshark/internal/model"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names of the smartSHARK database.
const (
	CollectionVCSSystem       = "vcs_system"
	CollectionIssueSystem     = "issue_system"
	CollectionCommit          = "commit"
	CollectionIssue           = "issue"
	CollectionEvent           = "event"
	CollectionFileAction      = "file_action"
	CollectionFile            = "file"
	CollectionHunk            = "hunk"
	CollectionCodeEntityState = "code_entity_state"
	CollectionRefactoring     = "refactoring"
)

type vcsSystemDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	ProjectID primitive.ObjectID `bson:"project_id"`
	URL       string             `bson:"url"`
}

type issueSystemDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	ProjectID primitive.ObjectID `bson:"project_id"`
	URL       string             `bson:"url"`
}

type commitDoc struct {
	ID             primitive.ObjectID   `bson:"_id"`
	VCSSystemID    primitive.ObjectID   `bson:"vcs_system_id"`
	RevisionHash   string               `bson:"revision_hash"`
	Message        string               `bson:"message"`
	Parents        []string             `bson:"parents"`
	LinkedIssueIDs []primitive.ObjectID `bson:"linked_issue_ids"`
	FixedIssueIDs  []primitive.ObjectID `bson:"fixed_issue_ids"`
	SZZIssueIDs    []primitive.ObjectID `bson:"szz_issue_ids"`
	Labels         map[string]bool      `bson:"labels"`
}

type issueDoc struct {
	ID                primitive.ObjectID  `bson:"_id"`
	IssueSystemID     primitive.ObjectID  `bson:"issue_system_id"`
	ExternalID        string              `bson:"external_id"`
	Title             string              `bson:"title"`
	Desc              string              `bson:"desc"`
	IssueType         string              `bson:"issue_type"`
	IssueTypeVerified string              `bson:"issue_type_verified"`
	Status            string              `bson:"status"`
	Resolution        string              `bson:"resolution"`
	ParentIssueID     *primitive.ObjectID `bson:"parent_issue_id"`
}

// issueFieldKeys maps the model names of the issue fields to the document keys.
var issueFieldKeys = map[string]string{
	"description":   "desc",
	"tracker_id":    "issue_system_id",
	"type":          "issue_type",
	"verified_type": "issue_type_verified",
}

// issueProjection selects the identities and the requested fields. The fields are either
// document keys or model names.
func issueProjection(fields []string) bson.D {
	projection := bson.D{{Key: "_id", Value: 1}, {Key: "issue_system_id", Value: 1}}
	seen := map[string]bool{"_id": true, "issue_system_id": true}
	for _, field := range fields {
		if key, exists := issueFieldKeys[field]; exists {
			field = key
		}
		if seen[field] {
			continue
		}
		seen[field] = true
		projection = append(projection, bson.E{Key: field, Value: 1})
	}
	return projection
}

// eventDoc follows the smartSHARK schema where "status" holds the name of the changed field.
type eventDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	IssueID   primitive.ObjectID `bson:"issue_id"`
	Status    string             `bson:"status"`
	NewValue  string             `bson:"new_value"`
	CreatedAt time.Time          `bson:"created_at"`
}

type fileActionDoc struct {
	ID                 primitive.ObjectID `bson:"_id"`
	CommitID           primitive.ObjectID `bson:"commit_id"`
	FileID             primitive.ObjectID `bson:"file_id"`
	ParentRevisionHash string             `bson:"parent_revision_hash"`
}

type fileDoc struct {
	ID   primitive.ObjectID `bson:"_id"`
	Path string             `bson:"path"`
}

type hunkDoc struct {
	ID           primitive.ObjectID `bson:"_id"`
	FileActionID primitive.ObjectID `bson:"file_action_id"`
	Content      string             `bson:"content"`
}

type codeEntityStateDoc struct {
	ID       primitive.ObjectID `bson:"_id"`
	CommitID primitive.ObjectID `bson:"commit_id"`
	FileID   primitive.ObjectID `bson:"file_id"`
	LongName string             `bson:"long_name"`
	CEType   string             `bson:"ce_type"`
	Imports  []string           `bson:"imports"`
	Metrics  map[string]float64 `bson:"metrics"`
}

// Mongo is the Store backed by a smartSHARK MongoDB database.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

// MongoURI builds the connection string from the usual command line parameters.
// Empty user disables the credentials, empty authDB omits authSource.
func MongoURI(user, password, host string, port int, authDB string, ssl bool) string {
	var credentials string
	if user != "" {
		credentials = url.UserPassword(user, password).String() + "@"
	}
	params := url.Values{}
	if authDB != "" {
		params.Set("authSource", authDB)
	}
	if ssl {
		params.Set("ssl", "true")
	}
	uri := fmt.Sprintf("mongodb://%s%s:%d/", credentials, host, port)
	if len(params) > 0 {
		uri += "?" + params.Encode()
	}
	return uri
}

// NewMongo connects to the database.
func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to MongoDB")
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(err, "pinging MongoDB")
	}
	return &Mongo{client: client, db: client.Database(database)}, nil
}

// Close disconnects from the database.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *Mongo) findOne(ctx context.Context, collection string, filter interface{}, result interface{}) error {
	err := m.db.Collection(collection).FindOne(ctx, filter).Decode(result)
	if err == mongo.ErrNoDocuments {
		return errors.Wrapf(ErrNotFound, "%s %v", collection, filter)
	}
	return errors.Wrapf(err, "querying %s", collection)
}

func (m *Mongo) findAll(ctx context.Context, collection string, filter interface{},
	result interface{}, opts ...*options.FindOptions) error {
	cursor, err := m.db.Collection(collection).Find(ctx, filter, opts...)
	if err != nil {
		return errors.Wrapf(err, "querying %s", collection)
	}
	return errors.Wrapf(cursor.All(ctx, result), "reading %s", collection)
}

// VCSSystem returns the repository with the given URL.
func (m *Mongo) VCSSystem(ctx context.Context, url string) (*model.VCSSystem, error) {
	doc := vcsSystemDoc{}
	if err := m.findOne(ctx, CollectionVCSSystem, bson.M{"url": url}, &doc); err != nil {
		return nil, err
	}
	return &model.VCSSystem{ID: doc.ID.Hex(), ProjectID: doc.ProjectID.Hex(), URL: doc.URL}, nil
}

// Commits iterates over the commits of the repository in the natural order.
func (m *Mongo) Commits(ctx context.Context, vcsSystemID string) (CommitIter, error) {
	id, err := primitive.ObjectIDFromHex(vcsSystemID)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid vcs system id %s", vcsSystemID)
	}
	cursor, err := m.db.Collection(CollectionCommit).Find(ctx, bson.M{"vcs_system_id": id},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "querying commits")
	}
	return &mongoCommitIter{cursor: cursor}, nil
}

// CountCommits returns the number of commits of the repository.
func (m *Mongo) CountCommits(ctx context.Context, vcsSystemID string) (int, error) {
	id, err := primitive.ObjectIDFromHex(vcsSystemID)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid vcs system id %s", vcsSystemID)
	}
	count, err := m.db.Collection(CollectionCommit).CountDocuments(ctx, bson.M{"vcs_system_id": id})
	return int(count), errors.Wrap(err, "counting commits")
}

// Trackers lists the trackers of a project.
func (m *Mongo) Trackers(ctx context.Context, projectID string) ([]*model.Tracker, error) {
	id, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid project id %s", projectID)
	}
	var docs []issueSystemDoc
	if err = m.findAll(ctx, CollectionIssueSystem, bson.M{"project_id": id}, &docs,
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})); err != nil {
		return nil, err
	}
	trackers := make([]*model.Tracker, len(docs))
	for i, doc := range docs {
		trackers[i] = model.NewTracker(doc.ID.Hex(), doc.ProjectID.Hex(), doc.URL)
	}
	return trackers, nil
}

// TrackerByURL returns the tracker with the given URL.
func (m *Mongo) TrackerByURL(ctx context.Context, url string) (*model.Tracker, error) {
	doc := issueSystemDoc{}
	if err := m.findOne(ctx, CollectionIssueSystem, bson.M{"url": url}, &doc); err != nil {
		return nil, err
	}
	return model.NewTracker(doc.ID.Hex(), doc.ProjectID.Hex(), doc.URL), nil
}

// Tracker returns the tracker with the given identity.
func (m *Mongo) Tracker(ctx context.Context, id string) (*model.Tracker, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid tracker id %s", id)
	}
	doc := issueSystemDoc{}
	if err = m.findOne(ctx, CollectionIssueSystem, bson.M{"_id": oid}, &doc); err != nil {
		return nil, err
	}
	return model.NewTracker(doc.ID.Hex(), doc.ProjectID.Hex(), doc.URL), nil
}

// Issues returns the issues matching the query. Fields are translated to a projection.
func (m *Mongo) Issues(ctx context.Context, query IssueQuery) ([]*model.Issue, error) {
	var filter bson.M
	if len(query.IDs) > 0 {
		ids, err := objectIDs(query.IDs)
		if err != nil {
			return nil, err
		}
		filter = bson.M{"_id": bson.M{"$in": ids}}
	} else {
		tracker, err := primitive.ObjectIDFromHex(query.TrackerID)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid tracker id %s", query.TrackerID)
		}
		external := make([]string, len(query.ExternalIDs))
		for i, id := range query.ExternalIDs {
			external[i] = strings.ToUpper(id)
		}
		filter = bson.M{"issue_system_id": tracker, "external_id": bson.M{"$in": external}}
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if len(query.Fields) > 0 {
		opts.SetProjection(issueProjection(query.Fields))
	}
	var docs []issueDoc
	if err := m.findAll(ctx, CollectionIssue, filter, &docs, opts); err != nil {
		return nil, err
	}
	issues := make([]*model.Issue, len(docs))
	for i, doc := range docs {
		issues[i] = &model.Issue{
			ID:                doc.ID.Hex(),
			TrackerID:         doc.IssueSystemID.Hex(),
			ExternalID:        doc.ExternalID,
			Title:             doc.Title,
			Description:       doc.Desc,
			IssueType:         doc.IssueType,
			IssueTypeVerified: doc.IssueTypeVerified,
			Status:            doc.Status,
			Resolution:        doc.Resolution,
		}
		if doc.ParentIssueID != nil {
			issues[i].ParentIssueID = doc.ParentIssueID.Hex()
		}
	}
	return issues, nil
}

// Events returns the history of an issue ordered by the creation time.
func (m *Mongo) Events(ctx context.Context, issueID string) ([]model.Event, error) {
	id, err := primitive.ObjectIDFromHex(issueID)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid issue id %s", issueID)
	}
	var docs []eventDoc
	if err = m.findAll(ctx, CollectionEvent, bson.M{"issue_id": id}, &docs,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})); err != nil {
		return nil, err
	}
	events := make([]model.Event, len(docs))
	for i, doc := range docs {
		events[i] = model.Event{
			ID: doc.ID.Hex(), IssueID: issueID, Field: doc.Status, NewValue: doc.NewValue,
			CreatedAt: doc.CreatedAt}
	}
	return events, nil
}

// FileActions lists the changed files of a commit together with their paths.
func (m *Mongo) FileActions(ctx context.Context, commitID, parentRevision string) ([]model.FileAction, error) {
	id, err := primitive.ObjectIDFromHex(commitID)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid commit id %s", commitID)
	}
	filter := bson.M{"commit_id": id}
	if parentRevision != "" {
		filter["parent_revision_hash"] = parentRevision
	}
	var docs []fileActionDoc
	if err = m.findAll(ctx, CollectionFileAction, filter, &docs); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	fileIDs := make([]primitive.ObjectID, len(docs))
	for i, doc := range docs {
		fileIDs[i] = doc.FileID
	}
	var files []fileDoc
	if err = m.findAll(ctx, CollectionFile, bson.M{"_id": bson.M{"$in": fileIDs}}, &files,
		options.Find().SetProjection(bson.M{"path": 1})); err != nil {
		return nil, err
	}
	paths := map[primitive.ObjectID]string{}
	for _, file := range files {
		paths[file.ID] = file.Path
	}
	actions := make([]model.FileAction, len(docs))
	for i, doc := range docs {
		actions[i] = model.FileAction{
			ID:                 doc.ID.Hex(),
			CommitID:           commitID,
			FileID:             doc.FileID.Hex(),
			Path:               paths[doc.FileID],
			ParentRevisionHash: doc.ParentRevisionHash,
		}
	}
	return actions, nil
}

// Hunks returns the diff hunks of the file actions.
func (m *Mongo) Hunks(ctx context.Context, fileActionIDs ...string) ([]model.Hunk, error) {
	if len(fileActionIDs) == 0 {
		return nil, nil
	}
	ids, err := objectIDs(fileActionIDs)
	if err != nil {
		return nil, err
	}
	var docs []hunkDoc
	if err = m.findAll(ctx, CollectionHunk, bson.M{"file_action_id": bson.M{"$in": ids}}, &docs); err != nil {
		return nil, err
	}
	hunks := make([]model.Hunk, len(docs))
	for i, doc := range docs {
		hunks[i] = model.Hunk{ID: doc.ID.Hex(), FileActionID: doc.FileActionID.Hex(), Content: doc.Content}
	}
	return hunks, nil
}

// CodeEntityStates returns the code entities of a commit.
func (m *Mongo) CodeEntityStates(ctx context.Context, commitID string, types ...string) (
	[]model.CodeEntityState, error) {
	id, err := primitive.ObjectIDFromHex(commitID)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid commit id %s", commitID)
	}
	filter := bson.M{"commit_id": id}
	if len(types) > 0 {
		filter["ce_type"] = bson.M{"$in": types}
	}
	var docs []codeEntityStateDoc
	if err = m.findAll(ctx, CollectionCodeEntityState, filter, &docs,
		options.Find().SetProjection(bson.M{
			"commit_id": 1, "file_id": 1, "long_name": 1, "ce_type": 1, "imports": 1, "metrics": 1,
		})); err != nil {
		return nil, err
	}
	states := make([]model.CodeEntityState, len(docs))
	for i, doc := range docs {
		states[i] = model.CodeEntityState{
			ID:       doc.ID.Hex(),
			CommitID: commitID,
			FileID:   doc.FileID.Hex(),
			LongName: doc.LongName,
			Type:     doc.CEType,
			Imports:  doc.Imports,
			Metrics:  doc.Metrics,
		}
	}
	return states, nil
}

// RefactoringCount returns the number of refactorings detected in the commit.
func (m *Mongo) RefactoringCount(ctx context.Context, commitID string) (int, error) {
	id, err := primitive.ObjectIDFromHex(commitID)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid commit id %s", commitID)
	}
	count, err := m.db.Collection(CollectionRefactoring).CountDocuments(ctx, bson.M{"commit_id": id})
	return int(count), errors.Wrap(err, "counting refactorings")
}

// ResolveRevision maps a revision hash to the commit identity.
func (m *Mongo) ResolveRevision(ctx context.Context, hash string) (string, error) {
	doc := commitDoc{}
	if err := m.findOne(ctx, CollectionCommit, bson.M{"revision_hash": hash}, &doc); err != nil {
		return "", err
	}
	return doc.ID.Hex(), nil
}

// UpsertLabels sets "labels.<name>" for every label, other stored labels stay intact.
func (m *Mongo) UpsertLabels(ctx context.Context, commitID string, labels map[string]bool) error {
	if len(labels) == 0 {
		return nil
	}
	id, err := primitive.ObjectIDFromHex(commitID)
	if err != nil {
		return errors.Wrapf(err, "invalid commit id %s", commitID)
	}
	set := bson.M{}
	for key, val := range labels {
		set["labels."+key] = val
	}
	_, err = m.db.Collection(CollectionCommit).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return errors.Wrapf(err, "updating the labels of %s", commitID)
}

type mongoCommitIter struct {
	cursor *mongo.Cursor
}

func (iter *mongoCommitIter) Next(ctx context.Context) (*model.Commit, error) {
	if !iter.cursor.Next(ctx) {
		if err := iter.cursor.Err(); err != nil {
			return nil, errors.Wrap(err, "iterating commits")
		}
		return nil, io.EOF
	}
	doc := commitDoc{}
	if err := iter.cursor.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decoding a commit")
	}
	labels := doc.Labels
	if labels == nil {
		labels = map[string]bool{}
	}
	return &model.Commit{
		ID:             doc.ID.Hex(),
		VCSSystemID:    doc.VCSSystemID.Hex(),
		Hash:           doc.RevisionHash,
		Message:        doc.Message,
		Parents:        doc.Parents,
		LinkedIssueIDs: hexIDs(doc.LinkedIssueIDs),
		FixedIssueIDs:  hexIDs(doc.FixedIssueIDs),
		SZZIssueIDs:    hexIDs(doc.SZZIssueIDs),
		Labels:         labels,
	}, nil
}

func (iter *mongoCommitIter) Close() error {
	return iter.cursor.Close(context.Background())
}

func objectIDs(ids []string) ([]primitive.ObjectID, error) {
	result := make([]primitive.ObjectID, len(ids))
	for i, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid id %s", id)
		}
		result[i] = oid
	}
	return result, nil
}

func hexIDs(ids []primitive.ObjectID) []string {
	if len(ids) == 0 {
		return nil
	}
	result := make([]string, len(ids))
	for i, id := range ids {
		result[i] = id.Hex()
	}
	return result
}
